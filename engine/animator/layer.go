package animator

// LayerIndex identifies one of the controller's four fixed priority tiers.
// Higher-indexed layers composite over lower ones.
type LayerIndex int

const (
	// LayerBase is the full-body foundation layer (locomotion, idles).
	LayerBase LayerIndex = iota

	// LayerUpperBody overrides the base on a masked sub-hierarchy (aiming,
	// carrying).
	LayerUpperBody

	// LayerExpression overrides for facial or secondary motion.
	LayerExpression

	// LayerOverride is the highest-priority layer (full-body overrides such
	// as deaths and cinematics).
	LayerOverride

	// NumLayers is the fixed layer count per controller.
	NumLayers = iota
)

// Valid reports whether the index names one of the four fixed layers.
//
// Returns:
//   - bool: true if the index is in [LayerBase, LayerOverride]
func (l LayerIndex) Valid() bool {
	return l >= LayerBase && l < NumLayers
}

// BlendMode selects how a layer's pose combines with the composite built by
// lower-priority layers.
type BlendMode int

const (
	// BlendOverride replaces or weight-lerps the running pose.
	BlendOverride BlendMode = iota

	// BlendAdditive is reserved for future work. It is accepted and stored
	// but composites identically to BlendOverride.
	BlendAdditive
)

// transition is one in-flight crossfade on a single layer. Each layer owns
// at most one; a new crossfade or play on the layer discards it.
type transition struct {
	// from is the outgoing animation state, kept advancing for the duration
	// of the fade. Nil when the layer was idle at crossfade start, in which
	// case the fade ramps in against the lower layers instead.
	from AnimationState

	duration float32
	elapsed  float32
}

// layer wraps one animation state with the compositing controls of a
// priority tier: blend weight, blend mode, and an optional partial bone
// mask restricting the layer's influence to a sub-hierarchy.
type layer struct {
	state AnimationState

	weight    float32
	blendMode BlendMode

	maskRoot       string
	usePartialMask bool

	// maskCache holds the per-bone mask membership for the current skeleton;
	// rebuilt when the mask or the bone count changes.
	maskCache []bool
	maskDirty bool

	transition *transition
}
