package common

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func floatNear(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func vecNear(a, b [3]float32) bool {
	return floatNear(a[0], b[0]) && floatNear(a[1], b[1]) && floatNear(a[2], b[2])
}

func quatNear(a, b [4]float32) bool {
	// q and -q represent the same rotation.
	direct := floatNear(a[0], b[0]) && floatNear(a[1], b[1]) && floatNear(a[2], b[2]) && floatNear(a[3], b[3])
	negated := floatNear(a[0], -b[0]) && floatNear(a[1], -b[1]) && floatNear(a[2], -b[2]) && floatNear(a[3], -b[3])
	return direct || negated
}

func matNear(a, b []float32) bool {
	for i := 0; i < 16; i++ {
		if !floatNear(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestMul4Identity(t *testing.T) {
	m := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	id := make([]float32, 16)
	Identity(id)

	out := make([]float32, 16)
	Mul4(out, id, m)
	if !matNear(out, m) {
		t.Errorf("identity * m = %v, want %v", out, m)
	}
	Mul4(out, m, id)
	if !matNear(out, m) {
		t.Errorf("m * identity = %v, want %v", out, m)
	}
}

func TestMul4Translation(t *testing.T) {
	// Two translations compose by adding offsets.
	a := make([]float32, 16)
	b := make([]float32, 16)
	ComposeTRS(a, [3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
	ComposeTRS(b, [3]float32{4, 5, 6}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})

	out := make([]float32, 16)
	Mul4(out, a, b)
	if !floatNear(out[12], 5) || !floatNear(out[13], 7) || !floatNear(out[14], 9) {
		t.Errorf("composed translation = (%v, %v, %v), want (5, 7, 9)", out[12], out[13], out[14])
	}
}

func TestInvert4(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		m := make([]float32, 16)
		ComposeTRS(m, [3]float32{1, -2, 3}, QuatNormalize([4]float32{0.2, 0.1, -0.3, 0.9}), [3]float32{2, 2, 2})

		inv := make([]float32, 16)
		if !Invert4(inv, m) {
			t.Fatal("Invert4 reported singular for an invertible matrix")
		}

		out := make([]float32, 16)
		Mul4(out, m, inv)
		id := make([]float32, 16)
		Identity(id)
		if !matNear(out, id) {
			t.Errorf("m * m^-1 = %v, want identity", out)
		}
	})

	t.Run("singular", func(t *testing.T) {
		m := make([]float32, 16) // all zeros
		out := make([]float32, 16)
		if Invert4(out, m) {
			t.Error("Invert4 inverted a singular matrix")
		}
	})
}

func TestLerp3(t *testing.T) {
	tests := []struct {
		name string
		a, b [3]float32
		t    float32
		want [3]float32
	}{
		{"start", [3]float32{1, 2, 3}, [3]float32{5, 6, 7}, 0, [3]float32{1, 2, 3}},
		{"end", [3]float32{1, 2, 3}, [3]float32{5, 6, 7}, 1, [3]float32{5, 6, 7}},
		{"midpoint", [3]float32{0, 0, 0}, [3]float32{2, 4, 6}, 0.5, [3]float32{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lerp3(tt.a, tt.b, tt.t)
			if !vecNear(got, tt.want) {
				t.Errorf("Lerp3(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.want)
			}
		})
	}
}

func TestQuatNormalize(t *testing.T) {
	t.Run("near zero collapses to identity", func(t *testing.T) {
		got := QuatNormalize([4]float32{0, 0, 0, 0})
		if got != [4]float32{0, 0, 0, 1} {
			t.Errorf("QuatNormalize(zero) = %v, want identity", got)
		}
	})

	t.Run("unit length output", func(t *testing.T) {
		got := QuatNormalize([4]float32{1, 2, 3, 4})
		if !floatNear(QuatDot(got, got), 1) {
			t.Errorf("|q| = %v, want 1", QuatDot(got, got))
		}
	})
}

func TestSlerp(t *testing.T) {
	// 90 degrees about Z.
	qz90 := [4]float32{0, 0, float32(math.Sin(math.Pi / 4)), float32(math.Cos(math.Pi / 4))}
	// 45 degrees about Z: the halfway point.
	qz45 := [4]float32{0, 0, float32(math.Sin(math.Pi / 8)), float32(math.Cos(math.Pi / 8))}
	identity := [4]float32{0, 0, 0, 1}

	t.Run("endpoints", func(t *testing.T) {
		if got := Slerp(identity, qz90, 0); !quatNear(got, identity) {
			t.Errorf("Slerp(t=0) = %v, want %v", got, identity)
		}
		if got := Slerp(identity, qz90, 1); !quatNear(got, qz90) {
			t.Errorf("Slerp(t=1) = %v, want %v", got, qz90)
		}
	})

	t.Run("halfway", func(t *testing.T) {
		if got := Slerp(identity, qz90, 0.5); !quatNear(got, qz45) {
			t.Errorf("Slerp(t=0.5) = %v, want %v", got, qz45)
		}
	})

	t.Run("shortest arc", func(t *testing.T) {
		// Negated endpoint represents the same rotation; the interpolation
		// must not swing the long way around.
		negated := [4]float32{-qz90[0], -qz90[1], -qz90[2], -qz90[3]}
		got := Slerp(identity, negated, 0.5)
		if !quatNear(got, qz45) {
			t.Errorf("Slerp(identity, -q, 0.5) = %v, want %v", got, qz45)
		}
	})

	t.Run("nearly parallel", func(t *testing.T) {
		a := QuatNormalize([4]float32{0, 0, 0.0001, 1})
		got := Slerp(a, a, 0.5)
		if !quatNear(got, a) {
			t.Errorf("Slerp(a, a, 0.5) = %v, want %v", got, a)
		}
	})
}

func TestComposeTRS(t *testing.T) {
	t.Run("translation column", func(t *testing.T) {
		out := make([]float32, 16)
		ComposeTRS(out, [3]float32{7, 8, 9}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
		if out[12] != 7 || out[13] != 8 || out[14] != 9 || out[15] != 1 {
			t.Errorf("translation column = (%v, %v, %v, %v), want (7, 8, 9, 1)", out[12], out[13], out[14], out[15])
		}
	})

	t.Run("scale diagonal", func(t *testing.T) {
		out := make([]float32, 16)
		ComposeTRS(out, [3]float32{0, 0, 0}, [4]float32{0, 0, 0, 1}, [3]float32{2, 3, 4})
		if out[0] != 2 || out[5] != 3 || out[10] != 4 {
			t.Errorf("scale diagonal = (%v, %v, %v), want (2, 3, 4)", out[0], out[5], out[10])
		}
	})

	t.Run("rotation 90 about z", func(t *testing.T) {
		out := make([]float32, 16)
		qz90 := [4]float32{0, 0, float32(math.Sin(math.Pi / 4)), float32(math.Cos(math.Pi / 4))}
		ComposeTRS(out, [3]float32{0, 0, 0}, qz90, [3]float32{1, 1, 1})
		// Column 0 is the image of the X axis: rotating X by 90 about Z gives Y.
		if !vecNear([3]float32{out[0], out[1], out[2]}, [3]float32{0, 1, 0}) {
			t.Errorf("rotated X axis = (%v, %v, %v), want (0, 1, 0)", out[0], out[1], out[2])
		}
	})
}

func TestLerpTransform(t *testing.T) {
	a := IdentityTransform()
	b := Transform{
		Translation: [3]float32{2, 0, 0},
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{3, 3, 3},
	}
	got := LerpTransform(a, b, 0.5)
	if !vecNear(got.Translation, [3]float32{1, 0, 0}) {
		t.Errorf("translation = %v, want (1, 0, 0)", got.Translation)
	}
	if !vecNear(got.Scale, [3]float32{2, 2, 2}) {
		t.Errorf("scale = %v, want (2, 2, 2)", got.Scale)
	}
}
