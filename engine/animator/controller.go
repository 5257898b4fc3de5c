package animator

import (
	"fmt"

	"github.com/Carmen-Shannon/anim-go/common"
	"github.com/Carmen-Shannon/anim-go/common/logging"
	"github.com/Carmen-Shannon/anim-go/engine/clip"
	"github.com/Carmen-Shannon/anim-go/engine/skeleton"
)

// controller is the implementation of the Controller interface.
type controller struct {
	skel  skeleton.Skeleton
	clips map[string]clip.Clip

	layers [NumLayers]layer

	// Per-frame scratch, sized to the skeleton's bone count on demand.
	pose      []common.Transform
	bindPose  []common.Transform
	boneNames []string
}

// Controller composes several independently playing animation states into
// one consistent pose for a single skeleton, every frame.
//
// A Controller owns four fixed layers (Base, UpperBody, Expression,
// Override, in ascending priority), a non-owning registry of named clips,
// and at most one in-flight crossfade per layer. Update advances every
// layer's playback, resolves per-bone local transforms across layers
// (respecting weight, partial masks, and crossfade progress), and
// propagates the result through the skeleton hierarchy into final skin
// matrices.
//
// The Controller holds non-owning references throughout: registered clips
// must outlive every controller that references them, and the skeleton must
// outlive the controller. A Controller is a single-owner, single-goroutine
// resource; Update must run to completion before the next call.
type Controller interface {
	// Update advances all layers by deltaTime and writes the frame's final
	// bone matrices into the skeleton. Layers tick their clip times
	// independently; they are not time-synchronized.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: ErrNotInitialized if the controller has no skeleton
	Update(deltaTime float32) error

	// RegisterClip adds a clip to the controller's registry under the clip's
	// name. Registering a name that already exists is idempotent: the
	// existing entry is kept and a warning is logged. The registry is
	// non-owning; the caller keeps the clip alive.
	//
	// Parameters:
	//   - c: the clip to register (must not be nil)
	//
	// Returns:
	//   - error: ErrInvalidArgument if c is nil
	RegisterClip(c clip.Clip) error

	// UnregisterClip removes a clip from the registry by name. Layers
	// already playing the clip keep their reference and are unaffected.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - error: ErrNotFound if no clip is registered under the name
	UnregisterClip(name string) error

	// Clip looks up a registered clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - clip.Clip: the clip
	//   - bool: true if registered
	Clip(name string) (clip.Clip, bool)

	// Play snaps a layer directly to a registered clip: the layer's state
	// restarts at time zero and the layer weight is pinned to 1.0 with no
	// blend-in. Any in-flight crossfade on the layer is discarded.
	//
	// Parameters:
	//   - li: the target layer
	//   - clipName: the registered clip to play
	//   - speed: playback speed multiplier (must be > 0)
	//   - loop: the loop mode
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer or speed, ErrNotFound for
	//     an unregistered clip; no state is mutated on failure
	Play(li LayerIndex, clipName string, speed float32, loop LoopMode) error

	// Crossfade starts a timed linear fade on a layer toward a registered
	// clip. The outgoing clip keeps playing for the duration of the fade;
	// the layer's weight is driven from 0 to 1 by Update as the fade
	// progresses. A new crossfade on the same layer cancels and replaces the
	// prior one; crossfades on different layers may coexist. A zero duration
	// completes on the next Update.
	//
	// Parameters:
	//   - li: the target layer
	//   - clipName: the registered clip to fade to
	//   - duration: the fade length in seconds (must be >= 0)
	//   - speed: playback speed multiplier for the new clip (must be > 0)
	//   - loop: the loop mode for the new clip
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer, speed, or duration,
	//     ErrNotFound for an unregistered clip; no state is mutated on failure
	Crossfade(li LayerIndex, clipName string, duration, speed float32, loop LoopMode) error

	// CancelCrossfade discards a layer's in-flight crossfade, keeping the
	// fade's target clip and pinning the layer weight to 1.0. No-op when the
	// layer is not crossfading.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer
	CancelCrossfade(li LayerIndex) error

	// IsCrossfading reports whether a layer has an in-flight crossfade.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - bool: true if the layer is crossfading (false for a bad layer)
	IsCrossfading(li LayerIndex) bool

	// CrossfadeProgress returns a layer's crossfade progress from 0 to 1,
	// or 0 when the layer is not crossfading.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - float32: the progress
	CrossfadeProgress(li LayerIndex) float32

	// Pause suspends a layer's playback, holding its clip and time.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer; ErrInvalidState if the
	//     layer is not playing (recoverable)
	Pause(li LayerIndex) error

	// Resume continues a paused layer.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer; ErrAlreadyPlaying or
	//     ErrInvalidState from the layer's state (recoverable)
	Resume(li LayerIndex) error

	// Stop halts a layer, clearing its clip and discarding any crossfade.
	// Non-base layers also have their weight reset to 0 so an idle layer
	// does not pin the rig to bind pose.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer
	Stop(li LayerIndex) error

	// SetLayerWeight sets a layer's blend weight. While a crossfade is
	// active on the layer the fade envelope overwrites the weight on the
	// next Update.
	//
	// Parameters:
	//   - li: the layer
	//   - weight: the blend weight in [0, 1]
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer or out-of-range weight
	SetLayerWeight(li LayerIndex, weight float32) error

	// LayerWeight returns a layer's current blend weight.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - float32: the weight (0 for a bad layer)
	LayerWeight(li LayerIndex) float32

	// SetLayerBlendMode sets how the layer composites over lower layers.
	// BlendAdditive is accepted but currently composites as BlendOverride.
	//
	// Parameters:
	//   - li: the layer
	//   - mode: the blend mode
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer or unknown mode
	SetLayerBlendMode(li LayerIndex, mode BlendMode) error

	// SetLayerPartialMask restricts a layer's influence to the sub-hierarchy
	// rooted at the named bone. Bones outside the sub-hierarchy receive the
	// bind pose from this layer.
	//
	// Parameters:
	//   - li: the layer
	//   - boneName: the mask root bone (must exist in the skeleton)
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer or empty name,
	//     ErrNotFound if the bone does not exist; no state is mutated on failure
	SetLayerPartialMask(li LayerIndex, boneName string) error

	// ClearLayerPartialMask removes a layer's partial mask, restoring its
	// influence over the whole skeleton.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - error: ErrInvalidArgument for a bad layer
	ClearLayerPartialMask(li LayerIndex) error

	// LayerState returns the animation state backing a layer, for
	// introspection and seeking. Returns nil for a bad layer.
	//
	// Parameters:
	//   - li: the layer
	//
	// Returns:
	//   - AnimationState: the layer's state or nil
	LayerState(li LayerIndex) AnimationState

	// Skeleton returns the skeleton this controller drives.
	//
	// Returns:
	//   - skeleton.Skeleton: the skeleton reference
	Skeleton() skeleton.Skeleton
}

var _ Controller = &controller{}

// NewController creates a controller for a skeleton. The controller holds a
// non-owning reference; the skeleton must outlive it. Layer weights default
// to 1.0 for the base layer and 0.0 for the others.
//
// Parameters:
//   - skel: the skeleton to drive (must not be nil)
//   - options: functional options applied after layer initialization
//
// Returns:
//   - Controller: the new controller, nil on error
//   - error: ErrInvalidArgument if skel is nil
func NewController(skel skeleton.Skeleton, options ...ControllerBuilderOption) (Controller, error) {
	if skel == nil {
		return nil, fmt.Errorf("controller: skeleton must not be nil: %w", common.ErrInvalidArgument)
	}

	c := &controller{
		skel:  skel,
		clips: make(map[string]clip.Clip),
	}
	for i := range c.layers {
		c.layers[i] = layer{
			state:     NewAnimationState(),
			blendMode: BlendOverride,
		}
	}
	c.layers[LayerBase].weight = 1.0

	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *controller) Update(deltaTime float32) error {
	if c.skel == nil {
		return fmt.Errorf("controller: %w", common.ErrNotInitialized)
	}

	// Step 1: advance crossfades and layer clocks. The fade envelope is
	// linear in cumulative elapsed time, so progress is independent of how
	// the delta is split across calls.
	for i := range c.layers {
		l := &c.layers[i]

		if tr := l.transition; tr != nil {
			tr.elapsed += deltaTime
			progress := float32(1.0)
			if tr.duration > 0 {
				progress = tr.elapsed / tr.duration
				if progress > 1 {
					progress = 1
				}
			}
			l.weight = progress

			if progress >= 1 {
				l.transition = nil
				l.weight = 1.0
				logging.Debug("crossfade complete", "layer", i)
			} else if tr.from != nil && tr.from.Playing() {
				// The outgoing clip keeps playing underneath the fade.
				_ = tr.from.Advance(deltaTime)
			}
		}

		if l.state.Playing() {
			_ = l.state.Advance(deltaTime)
		}
	}

	// Step 2: per-bone local transform resolution across layers.
	c.refreshSkeletonCache()
	count := len(c.bindPose)
	for b := 0; b < count; b++ {
		c.pose[b] = c.resolveBone(int32(b))
	}

	// Step 3: hierarchy propagation into final skin matrices.
	return c.skel.ApplyLocalPose(c.pose)
}

// resolveBone composites one bone's local transform across all four layers
// in ascending priority order.
func (c *controller) resolveBone(b int32) common.Transform {
	bind := c.bindPose[b]
	name := c.boneNames[b]

	result := bind
	for i := range c.layers {
		l := &c.layers[i]
		masked := l.usePartialMask && !l.maskCache[b]

		contribution := c.layerContribution(l, name, bind, masked)

		if tr := l.transition; tr != nil {
			// Crossfading layer: hand off from the outgoing clip's pose to
			// the incoming one. A fade started from an idle layer ramps in
			// against the running composite instead.
			progress := l.weight
			from := result
			if tr.from != nil {
				from = bind
				if !masked && tr.from.Playing() {
					if v, ok := tr.from.BoneLocal(name); ok {
						from = v
					}
				}
			}
			result = common.LerpTransform(from, contribution, progress)
			continue
		}

		if LayerIndex(i) == LayerBase {
			// The base layer's pose is the foundation the other layers
			// composite over; its weight gates, it does not attenuate.
			if l.weight > 0 {
				result = contribution
			}
			continue
		}

		// Additive mode is reserved; it composites as override for now.
		switch {
		case l.weight >= 1:
			result = contribution
		case l.weight > 0:
			result = common.LerpTransform(result, contribution, l.weight)
		}
	}
	return result
}

// layerContribution returns the layer's pose value for one bone: the
// sampled clip transform when the layer is actively playing and the bone is
// inside the mask, the bind pose otherwise.
func (c *controller) layerContribution(l *layer, boneName string, bind common.Transform, masked bool) common.Transform {
	if masked || !l.state.Playing() {
		return bind
	}
	if v, ok := l.state.BoneLocal(boneName); ok {
		return v
	}
	return bind
}

// refreshSkeletonCache rebuilds the cached bind pose, bone names, and layer
// mask tables when the skeleton's bone count has changed, and rebuilds any
// mask whose root was re-assigned.
func (c *controller) refreshSkeletonCache() {
	count := c.skel.BoneCount()
	resized := len(c.bindPose) != count
	if resized {
		c.bindPose = make([]common.Transform, count)
		c.boneNames = make([]string, count)
		c.pose = make([]common.Transform, count)
		for i := int32(0); i < int32(count); i++ {
			bone, err := c.skel.Bone(i)
			if err != nil {
				continue
			}
			c.bindPose[i] = bone.LocalBind
			c.boneNames[i] = bone.Name
		}
	}

	for i := range c.layers {
		l := &c.layers[i]
		if !l.usePartialMask {
			continue
		}
		if !l.maskDirty && !resized && len(l.maskCache) == count {
			continue
		}
		root, ok := c.skel.BoneIndex(l.maskRoot)
		if len(l.maskCache) != count {
			l.maskCache = make([]bool, count)
		}
		for b := int32(0); b < int32(count); b++ {
			l.maskCache[b] = ok && c.skel.InSubtree(b, root)
		}
		l.maskDirty = false
	}
}

func (c *controller) RegisterClip(cl clip.Clip) error {
	if cl == nil {
		return fmt.Errorf("controller: register requires a non-nil clip: %w", common.ErrInvalidArgument)
	}
	if _, ok := c.clips[cl.Name()]; ok {
		logging.Warn("duplicate clip registration, keeping existing", "clip", cl.Name())
		return nil
	}
	c.clips[cl.Name()] = cl
	logging.Debug("clip registered", "clip", cl.Name(), "duration", cl.Duration())
	return nil
}

func (c *controller) UnregisterClip(name string) error {
	if _, ok := c.clips[name]; !ok {
		return fmt.Errorf("controller: clip %q is not registered: %w", name, common.ErrNotFound)
	}
	delete(c.clips, name)
	return nil
}

func (c *controller) Clip(name string) (clip.Clip, bool) {
	cl, ok := c.clips[name]
	return cl, ok
}

func (c *controller) Play(li LayerIndex, clipName string, speed float32, loop LoopMode) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	cl, ok := c.clips[clipName]
	if !ok {
		return fmt.Errorf("controller: clip %q is not registered: %w", clipName, common.ErrNotFound)
	}
	if speed <= 0 {
		return fmt.Errorf("controller: play speed %v must be positive: %w", speed, common.ErrInvalidArgument)
	}

	l := &c.layers[li]
	if err := l.state.Play(cl, speed, loop); err != nil {
		return err
	}
	l.transition = nil
	l.weight = 1.0
	logging.Info("layer playing", "layer", int(li), "clip", clipName)
	return nil
}

func (c *controller) Crossfade(li LayerIndex, clipName string, duration, speed float32, loop LoopMode) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	cl, ok := c.clips[clipName]
	if !ok {
		return fmt.Errorf("controller: clip %q is not registered: %w", clipName, common.ErrNotFound)
	}
	if duration < 0 {
		return fmt.Errorf("controller: crossfade duration %v must not be negative: %w", duration, common.ErrInvalidArgument)
	}
	if speed <= 0 {
		return fmt.Errorf("controller: crossfade speed %v must be positive: %w", speed, common.ErrInvalidArgument)
	}

	l := &c.layers[li]

	// The outgoing state keeps playing through the fade; a fresh state takes
	// over as the layer's target. A crossfade from an idle layer has no
	// outgoing state and fades in against the lower layers.
	var from AnimationState
	if l.state.Playing() {
		from = l.state
	}
	target := NewAnimationState()
	if err := target.Play(cl, speed, loop); err != nil {
		return err
	}

	l.state = target
	l.transition = &transition{from: from, duration: duration}
	l.weight = 0
	logging.Info("crossfade started", "layer", int(li), "clip", clipName, "duration", duration)
	return nil
}

func (c *controller) CancelCrossfade(li LayerIndex) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	l := &c.layers[li]
	if l.transition == nil {
		return nil
	}
	l.transition = nil
	l.weight = 1.0
	logging.Debug("crossfade cancelled", "layer", int(li))
	return nil
}

func (c *controller) IsCrossfading(li LayerIndex) bool {
	if !li.Valid() {
		return false
	}
	return c.layers[li].transition != nil
}

func (c *controller) CrossfadeProgress(li LayerIndex) float32 {
	if !li.Valid() {
		return 0
	}
	tr := c.layers[li].transition
	if tr == nil {
		return 0
	}
	if tr.duration <= 0 {
		return 1
	}
	progress := tr.elapsed / tr.duration
	if progress > 1 {
		progress = 1
	}
	return progress
}

func (c *controller) Pause(li LayerIndex) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	return c.layers[li].state.Pause()
}

func (c *controller) Resume(li LayerIndex) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	return c.layers[li].state.Resume()
}

func (c *controller) Stop(li LayerIndex) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	l := &c.layers[li]
	l.state.Stop()
	l.transition = nil
	if li != LayerBase {
		l.weight = 0
	}
	logging.Debug("layer stopped", "layer", int(li))
	return nil
}

func (c *controller) SetLayerWeight(li LayerIndex, weight float32) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	if weight < 0 || weight > 1 {
		return fmt.Errorf("controller: weight %v must be in [0, 1]: %w", weight, common.ErrInvalidArgument)
	}
	c.layers[li].weight = weight
	return nil
}

func (c *controller) LayerWeight(li LayerIndex) float32 {
	if !li.Valid() {
		return 0
	}
	return c.layers[li].weight
}

func (c *controller) SetLayerBlendMode(li LayerIndex, mode BlendMode) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	if mode != BlendOverride && mode != BlendAdditive {
		return fmt.Errorf("controller: unknown blend mode %d: %w", mode, common.ErrInvalidArgument)
	}
	c.layers[li].blendMode = mode
	return nil
}

func (c *controller) SetLayerPartialMask(li LayerIndex, boneName string) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	if boneName == "" {
		return fmt.Errorf("controller: mask root must not be empty (use ClearLayerPartialMask): %w", common.ErrInvalidArgument)
	}
	if _, ok := c.skel.BoneIndex(boneName); !ok {
		return fmt.Errorf("controller: mask root bone %q not in skeleton %q: %w", boneName, c.skel.Name(), common.ErrNotFound)
	}

	l := &c.layers[li]
	l.maskRoot = boneName
	l.usePartialMask = true
	l.maskDirty = true
	return nil
}

func (c *controller) ClearLayerPartialMask(li LayerIndex) error {
	if !li.Valid() {
		return fmt.Errorf("controller: layer %d out of range: %w", li, common.ErrInvalidArgument)
	}
	l := &c.layers[li]
	l.maskRoot = ""
	l.usePartialMask = false
	l.maskDirty = false
	return nil
}

func (c *controller) LayerState(li LayerIndex) AnimationState {
	if !li.Valid() {
		return nil
	}
	return c.layers[li].state
}

func (c *controller) Skeleton() skeleton.Skeleton {
	return c.skel
}
