package profile

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/anim-go/common"
	"github.com/Carmen-Shannon/anim-go/engine/animator"
	"gopkg.in/yaml.v3"
)

// LayerProfile declares the initial compositing setup for one controller
// layer.
type LayerProfile struct {
	// Layer names the target layer: "base", "upper_body", "expression",
	// or "override".
	Layer string `yaml:"layer"`

	// Weight is the layer's blend weight in [0, 1].
	Weight float32 `yaml:"weight"`

	// BlendMode is "override" (default) or "additive".
	BlendMode string `yaml:"blend_mode,omitempty"`

	// MaskRoot restricts the layer to the sub-hierarchy rooted at the named
	// bone. Empty means the layer influences the whole skeleton.
	MaskRoot string `yaml:"mask_root,omitempty"`
}

// ControllerProfile is a declarative runtime policy for an animation
// controller: per-layer weights, blend modes, and partial masks, plus the
// default crossfade duration. Profiles configure policy only; animation
// data itself never comes from a profile.
type ControllerProfile struct {
	// Name identifies the profile.
	Name string `yaml:"name"`

	// CrossfadeDuration is the default fade length in seconds used by
	// callers that don't pass an explicit duration.
	CrossfadeDuration float32 `yaml:"crossfade_duration,omitempty"`

	// Layers holds the per-layer setup. Layers not listed keep the
	// controller's defaults.
	Layers []LayerProfile `yaml:"layers,omitempty"`
}

// layerNames maps profile layer names to controller layer indices.
var layerNames = map[string]animator.LayerIndex{
	"base":       animator.LayerBase,
	"upper_body": animator.LayerUpperBody,
	"expression": animator.LayerExpression,
	"override":   animator.LayerOverride,
}

// blendModeNames maps profile blend mode names to controller blend modes.
var blendModeNames = map[string]animator.BlendMode{
	"":         animator.BlendOverride,
	"override": animator.BlendOverride,
	"additive": animator.BlendAdditive,
}

// Parse decodes a controller profile from YAML bytes and validates it.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *ControllerProfile: the decoded profile, nil on error
//   - error: decode errors, or ErrInvalidArgument for semantic violations
func Parse(data []byte) (*ControllerProfile, error) {
	var p ControllerProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: failed to parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a controller profile from a YAML file.
//
// Parameters:
//   - path: the profile file path
//
// Returns:
//   - *ControllerProfile: the decoded profile, nil on error
//   - error: file read errors, decode errors, or validation errors
func Load(path string) (*ControllerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the profile's semantic constraints: known layer and blend
// mode names, no duplicate layer entries, weights in [0, 1], and a
// non-negative crossfade duration.
//
// Returns:
//   - error: ErrInvalidArgument describing the first violation, or nil
func (p *ControllerProfile) Validate() error {
	if p.CrossfadeDuration < 0 {
		return fmt.Errorf("profile %q: crossfade_duration %v must not be negative: %w", p.Name, p.CrossfadeDuration, common.ErrInvalidArgument)
	}

	seen := make(map[string]bool, len(p.Layers))
	for _, lp := range p.Layers {
		if _, ok := layerNames[lp.Layer]; !ok {
			return fmt.Errorf("profile %q: unknown layer %q: %w", p.Name, lp.Layer, common.ErrInvalidArgument)
		}
		if seen[lp.Layer] {
			return fmt.Errorf("profile %q: duplicate layer %q: %w", p.Name, lp.Layer, common.ErrInvalidArgument)
		}
		seen[lp.Layer] = true

		if lp.Weight < 0 || lp.Weight > 1 {
			return fmt.Errorf("profile %q: layer %q weight %v must be in [0, 1]: %w", p.Name, lp.Layer, lp.Weight, common.ErrInvalidArgument)
		}
		if _, ok := blendModeNames[lp.BlendMode]; !ok {
			return fmt.Errorf("profile %q: layer %q unknown blend mode %q: %w", p.Name, lp.Layer, lp.BlendMode, common.ErrInvalidArgument)
		}
	}
	return nil
}

// Apply configures a controller from the profile: for each declared layer
// it sets the weight and blend mode and installs or clears the partial
// mask. Apply stops at the first controller error (for example a mask root
// missing from the skeleton), leaving earlier layers configured.
//
// Parameters:
//   - ctrl: the controller to configure (must not be nil)
//
// Returns:
//   - error: ErrInvalidArgument if ctrl is nil, or the first controller error
func (p *ControllerProfile) Apply(ctrl animator.Controller) error {
	if ctrl == nil {
		return fmt.Errorf("profile %q: apply requires a non-nil controller: %w", p.Name, common.ErrInvalidArgument)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	for _, lp := range p.Layers {
		li := layerNames[lp.Layer]

		if err := ctrl.SetLayerWeight(li, lp.Weight); err != nil {
			return fmt.Errorf("profile %q: layer %q: %w", p.Name, lp.Layer, err)
		}
		if err := ctrl.SetLayerBlendMode(li, blendModeNames[lp.BlendMode]); err != nil {
			return fmt.Errorf("profile %q: layer %q: %w", p.Name, lp.Layer, err)
		}

		if lp.MaskRoot != "" {
			if err := ctrl.SetLayerPartialMask(li, lp.MaskRoot); err != nil {
				return fmt.Errorf("profile %q: layer %q: %w", p.Name, lp.Layer, err)
			}
		} else if err := ctrl.ClearLayerPartialMask(li); err != nil {
			return fmt.Errorf("profile %q: layer %q: %w", p.Name, lp.Layer, err)
		}
	}
	return nil
}
