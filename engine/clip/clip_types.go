package clip

// --- Keyframe Types ---

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value [3]float32
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe (x, y, z, w).
	Value [4]float32
}

// BoneChannel contains the keyframe data for a single bone: three
// independent sequences for position, rotation, and scale, each sorted
// ascending by time. A channel is owned exclusively by its Clip, built
// once during authoring and read-only during playback.
//
// Sequences are expected to be appended in non-decreasing time order; the
// channel does not sort on insert. Out-of-order input leaves interpolation
// results unspecified (never a crash — the bracket scan falls through to
// the clamp path).
type BoneChannel struct {
	// BoneName is the skeleton bone this channel animates.
	BoneName string

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// RotationKeys are keyframes for rotation (quaternion).
	RotationKeys []QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe
}
