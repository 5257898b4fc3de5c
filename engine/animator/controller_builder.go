package animator

import (
	"github.com/Carmen-Shannon/anim-go/common/logging"
	"github.com/Carmen-Shannon/anim-go/engine/clip"
)

// ControllerBuilderOption is a functional option for configuring a Controller during construction.
type ControllerBuilderOption func(*controller)

// WithClips is an option builder that pre-registers clips in the controller's
// registry. Nil clips and duplicate names are skipped with a warning.
//
// Parameters:
//   - clips: the clips to register
//
// Returns:
//   - ControllerBuilderOption: a function that registers the clips on a controller
func WithClips(clips ...clip.Clip) ControllerBuilderOption {
	return func(c *controller) {
		for _, cl := range clips {
			if cl == nil {
				logging.Warn("skipping nil clip in controller options")
				continue
			}
			if _, ok := c.clips[cl.Name()]; ok {
				logging.Warn("duplicate clip in controller options, keeping existing", "clip", cl.Name())
				continue
			}
			c.clips[cl.Name()] = cl
		}
	}
}

// WithLayerWeight is an option builder that sets a layer's initial blend
// weight. Out-of-range layers or weights are skipped with a warning.
//
// Parameters:
//   - li: the layer
//   - weight: the blend weight in [0, 1]
//
// Returns:
//   - ControllerBuilderOption: a function that applies the weight to a controller
func WithLayerWeight(li LayerIndex, weight float32) ControllerBuilderOption {
	return func(c *controller) {
		if !li.Valid() || weight < 0 || weight > 1 {
			logging.Warn("skipping invalid layer weight option", "layer", int(li), "weight", weight)
			return
		}
		c.layers[li].weight = weight
	}
}

// WithLayerBlendMode is an option builder that sets a layer's blend mode.
//
// Parameters:
//   - li: the layer
//   - mode: the blend mode
//
// Returns:
//   - ControllerBuilderOption: a function that applies the mode to a controller
func WithLayerBlendMode(li LayerIndex, mode BlendMode) ControllerBuilderOption {
	return func(c *controller) {
		if !li.Valid() || (mode != BlendOverride && mode != BlendAdditive) {
			logging.Warn("skipping invalid blend mode option", "layer", int(li), "mode", int(mode))
			return
		}
		c.layers[li].blendMode = mode
	}
}

// WithPartialMask is an option builder that restricts a layer's influence to
// the sub-hierarchy rooted at the named bone. The bone is resolved lazily on
// the first Update, so the option may name a bone added after construction.
//
// Parameters:
//   - li: the layer
//   - boneName: the mask root bone
//
// Returns:
//   - ControllerBuilderOption: a function that applies the mask to a controller
func WithPartialMask(li LayerIndex, boneName string) ControllerBuilderOption {
	return func(c *controller) {
		if !li.Valid() || boneName == "" {
			logging.Warn("skipping invalid partial mask option", "layer", int(li), "bone", boneName)
			return
		}
		l := &c.layers[li]
		l.maskRoot = boneName
		l.usePartialMask = true
		l.maskDirty = true
	}
}
