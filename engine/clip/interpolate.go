package clip

import (
	"github.com/Carmen-Shannon/anim-go/common"
)

// interpolateVector samples a position or scale keyframe sequence at the
// given time.
//
// Edge cases are total: an empty sequence yields the provided fallback
// value, a single-entry sequence yields that entry for any query time, and
// a time beyond the last keyframe clamps to the last keyframe's value.
// Wraparound is never applied here; looping is the playback state's job.
//
// Parameters:
//   - keys: the keyframe sequence, sorted ascending by time
//   - time: the query time in seconds
//   - fallback: the value returned for an empty sequence
//
// Returns:
//   - [3]float32: the interpolated value
func interpolateVector(keys []VectorKeyframe, time float32, fallback [3]float32) [3]float32 {
	if len(keys) == 0 {
		return fallback
	}
	if len(keys) == 1 {
		return keys[0].Value
	}

	if time <= keys[0].Time {
		return keys[0].Value
	}

	for i := 0; i < len(keys)-1; i++ {
		k0, k1 := keys[i], keys[i+1]
		if k0.Time <= time && time <= k1.Time {
			return common.Lerp3(k0.Value, k1.Value, interpolationFactor(k0.Time, k1.Time, time))
		}
	}

	// Past the last keyframe: clamp to edge.
	return keys[len(keys)-1].Value
}

// interpolateQuaternion samples a rotation keyframe sequence at the given
// time using spherical linear interpolation. Edge-case policy matches
// interpolateVector: empty → identity quaternion, single entry → that
// entry, past the end → last keyframe.
//
// Parameters:
//   - keys: the keyframe sequence, sorted ascending by time
//   - time: the query time in seconds
//
// Returns:
//   - [4]float32: the interpolated unit quaternion (x, y, z, w)
func interpolateQuaternion(keys []QuaternionKeyframe, time float32) [4]float32 {
	if len(keys) == 0 {
		return [4]float32{0, 0, 0, 1}
	}
	if len(keys) == 1 {
		return common.QuatNormalize(keys[0].Value)
	}

	if time <= keys[0].Time {
		return common.QuatNormalize(keys[0].Value)
	}

	for i := 0; i < len(keys)-1; i++ {
		k0, k1 := keys[i], keys[i+1]
		if k0.Time <= time && time <= k1.Time {
			return common.Slerp(k0.Value, k1.Value, interpolationFactor(k0.Time, k1.Time, time))
		}
	}

	return common.QuatNormalize(keys[len(keys)-1].Value)
}

// interpolationFactor computes the normalized blend factor for a bracketing
// keyframe pair. A degenerate pair with equal timestamps yields 0 rather
// than dividing by zero.
func interpolationFactor(t0, t1, time float32) float32 {
	span := t1 - t0
	if span == 0 {
		return 0
	}
	return (time - t0) / span
}

// Sample returns the channel's interpolated local transform at the given
// time. Missing sequences fall back to the identity components (zero
// translation, identity rotation, unit scale).
//
// Parameters:
//   - time: the query time in seconds
//
// Returns:
//   - common.Transform: the interpolated bone-local transform
func (ch *BoneChannel) Sample(time float32) common.Transform {
	identity := common.IdentityTransform()
	return common.Transform{
		Translation: interpolateVector(ch.PositionKeys, time, identity.Translation),
		Rotation:    interpolateQuaternion(ch.RotationKeys, time),
		Scale:       interpolateVector(ch.ScaleKeys, time, identity.Scale),
	}
}
