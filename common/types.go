// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// shared animation data in a form every package agrees on.
package common

// Transform is a decomposed bone-local transform used for animation
// interpolation: translation, rotation quaternion, and scale are blended
// independently and only composed into a matrix during hierarchy propagation.
type Transform struct {
	// Translation is the position offset relative to the parent bone.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns the neutral transform: zero translation,
// identity rotation, unit scale. This is the defined fallback value for
// empty keyframe sequences and unanimated bones.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Translation: [3]float32{0, 0, 0},
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
	}
}

// LerpTransform blends two transforms component-wise: translation and scale
// interpolate linearly, rotation interpolates spherically along the shortest
// arc.
//
// Parameters:
//   - a: start transform (returned when t = 0)
//   - b: end transform (returned when t = 1)
//   - t: interpolation factor, typically in [0, 1]
//
// Returns:
//   - Transform: the blended transform
func LerpTransform(a, b Transform, t float32) Transform {
	return Transform{
		Translation: Lerp3(a.Translation, b.Translation, t),
		Rotation:    Slerp(a.Rotation, b.Rotation, t),
		Scale:       Lerp3(a.Scale, b.Scale, t),
	}
}

// Matrix composes the transform into a 4x4 column-major matrix (T * R * S).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (t Transform) Matrix(out []float32) {
	ComposeTRS(out, t.Translation, t.Rotation, t.Scale)
}
