package skeleton

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/anim-go/common"
)

const epsilon = 1e-5

func floatNear(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func matNear(a, b [16]float32) bool {
	for i := range a {
		if !floatNear(a[i], b[i]) {
			return false
		}
	}
	return true
}

// translated builds a transform with only a translation component.
func translated(x, y, z float32) common.Transform {
	tr := common.IdentityTransform()
	tr.Translation = [3]float32{x, y, z}
	return tr
}

func TestAddBoneValidation(t *testing.T) {
	s := NewSkeleton("rig")

	if _, err := s.AddBone("", -1, common.IdentityTransform(), common.IdentityMatrix()); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("empty name error = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.AddBone("hips", 0, common.IdentityTransform(), common.IdentityMatrix()); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("forward parent reference error = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.AddBone("hips", -2, common.IdentityTransform(), common.IdentityMatrix()); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("parent index -2 error = %v, want ErrInvalidArgument", err)
	}

	idx, err := s.AddBone("hips", -1, common.IdentityTransform(), common.IdentityMatrix())
	if err != nil || idx != 0 {
		t.Fatalf("AddBone(hips) = (%d, %v), want (0, nil)", idx, err)
	}
	if s.BoneCount() != 1 {
		t.Errorf("BoneCount = %d, want 1", s.BoneCount())
	}
}

func TestAddBoneDuplicateIdempotent(t *testing.T) {
	s := NewSkeleton("rig")
	first, _ := s.AddBone("hips", -1, common.IdentityTransform(), common.IdentityMatrix())
	second, err := s.AddBone("hips", -1, translated(9, 9, 9), common.IdentityMatrix())
	if err != nil {
		t.Fatalf("duplicate AddBone: %v", err)
	}
	if first != second {
		t.Errorf("duplicate AddBone returned index %d, want %d", second, first)
	}
	if s.BoneCount() != 1 {
		t.Errorf("BoneCount = %d, want 1 after duplicate add", s.BoneCount())
	}

	// The original bind transform must survive the duplicate add.
	bone, _ := s.Bone(first)
	if bone.LocalBind != common.IdentityTransform() {
		t.Errorf("duplicate add overwrote the original bone: %v", bone.LocalBind)
	}
}

func TestBoneLookup(t *testing.T) {
	s := NewSkeleton("rig")
	_, _ = s.AddBone("hips", -1, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("spine", 0, common.IdentityTransform(), common.IdentityMatrix())

	idx, ok := s.BoneIndex("spine")
	if !ok || idx != 1 {
		t.Errorf("BoneIndex(spine) = (%d, %v), want (1, true)", idx, ok)
	}
	if _, ok := s.BoneIndex("tail"); ok {
		t.Error("BoneIndex found a bone that was never added")
	}
	if _, err := s.Bone(7); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Bone(7) error = %v, want ErrNotFound", err)
	}
}

func TestRootIndices(t *testing.T) {
	s := NewSkeleton("rig")
	_, _ = s.AddBone("hips", -1, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("spine", 0, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("prop", -1, common.IdentityTransform(), common.IdentityMatrix())

	roots := s.RootIndices()
	if len(roots) != 2 || roots[0] != 0 || roots[1] != 2 {
		t.Errorf("RootIndices = %v, want [0 2]", roots)
	}
}

func TestInSubtree(t *testing.T) {
	// root -> A -> B, plus an unrelated second root.
	s := NewSkeleton("rig")
	_, _ = s.AddBone("root", -1, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("A", 0, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("B", 1, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("other", -1, common.IdentityTransform(), common.IdentityMatrix())

	tests := []struct {
		name       string
		bone, root int32
		want       bool
	}{
		{"self", 1, 1, true},
		{"child of root", 2, 1, true},
		{"grandchild of skeleton root", 2, 0, true},
		{"ancestor not descendant", 0, 1, false},
		{"unrelated root", 3, 0, false},
		{"out of range bone", 9, 0, false},
		{"out of range root", 0, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.InSubtree(tt.bone, tt.root); got != tt.want {
				t.Errorf("InSubtree(%d, %d) = %v, want %v", tt.bone, tt.root, got, tt.want)
			}
		})
	}
}

// recursiveGlobals computes global transforms with an explicit parent-first
// recursion, as a reference for the flat ascending-index pass.
func recursiveGlobals(s Skeleton, pose []common.Transform) [][16]float32 {
	count := s.BoneCount()
	out := make([][16]float32, count)
	computed := make([]bool, count)

	var compute func(i int32)
	compute = func(i int32) {
		if computed[i] {
			return
		}
		bone, _ := s.Bone(i)
		var local [16]float32
		pose[i].Matrix(local[:])
		if bone.ParentIndex == -1 {
			out[i] = local
		} else {
			compute(bone.ParentIndex)
			parent := out[bone.ParentIndex]
			common.Mul4(out[i][:], parent[:], local[:])
		}
		computed[i] = true
	}
	for i := int32(0); i < int32(count); i++ {
		compute(i)
	}
	return out
}

func TestHierarchyOrdering(t *testing.T) {
	// Branching chain: root with two children, each with its own child.
	s := NewSkeleton("rig")
	_, _ = s.AddBone("root", -1, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("L1", 0, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("R1", 0, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("L2", 1, common.IdentityTransform(), common.IdentityMatrix())
	_, _ = s.AddBone("R2", 2, common.IdentityTransform(), common.IdentityMatrix())

	pose := []common.Transform{
		translated(1, 0, 0),
		translated(0, 2, 0),
		translated(0, -2, 0),
		translated(0, 0, 3),
		translated(0, 0, -3),
	}
	if err := s.ApplyLocalPose(pose); err != nil {
		t.Fatalf("ApplyLocalPose: %v", err)
	}

	want := recursiveGlobals(s, pose)
	for i := int32(0); i < int32(s.BoneCount()); i++ {
		// Inverse binds are identity, so final == global.
		got, err := s.FinalTransform(i)
		if err != nil {
			t.Fatalf("FinalTransform(%d): %v", i, err)
		}
		if !matNear(got, want[i]) {
			t.Errorf("bone %d final = %v, want %v", i, got, want[i])
		}
	}
}

func TestApplyLocalPoseLengthMismatch(t *testing.T) {
	s := NewSkeleton("rig")
	_, _ = s.AddBone("root", -1, common.IdentityTransform(), common.IdentityMatrix())

	if err := s.ApplyLocalPose(nil); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("ApplyLocalPose(nil) error = %v, want ErrInvalidArgument", err)
	}
	if err := s.ApplyLocalPose(make([]common.Transform, 3)); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("pose length mismatch error = %v, want ErrInvalidArgument", err)
	}
}

func TestComputeInverseBindMatrices(t *testing.T) {
	// With computed inverse binds, applying the bind pose itself must yield
	// identity skin matrices on every bone.
	s := NewSkeleton("rig")
	_, _ = s.AddBone("root", -1, translated(0, 1, 0), [16]float32{})
	_, _ = s.AddBone("A", 0, translated(0, 2, 0), [16]float32{})
	_, _ = s.AddBone("B", 1, translated(0, 3, 0), [16]float32{})
	s.ComputeInverseBindMatrices()

	pose := []common.Transform{
		translated(0, 1, 0),
		translated(0, 2, 0),
		translated(0, 3, 0),
	}
	if err := s.ApplyLocalPose(pose); err != nil {
		t.Fatalf("ApplyLocalPose: %v", err)
	}

	id := common.IdentityMatrix()
	for i := int32(0); i < int32(s.BoneCount()); i++ {
		got, _ := s.FinalTransform(i)
		if !matNear(got, id) {
			t.Errorf("bone %d skin matrix at bind pose = %v, want identity", i, got)
		}
	}
}

func TestSortBoneDefs(t *testing.T) {
	t.Run("reorders children before parents", func(t *testing.T) {
		defs := []BoneDef{
			{Name: "B", ParentIndex: 2},  // child of A
			{Name: "root", ParentIndex: -1},
			{Name: "A", ParentIndex: 1},  // child of root
		}
		sorted, oldToNew, err := SortBoneDefs(defs)
		if err != nil {
			t.Fatalf("SortBoneDefs: %v", err)
		}

		if sorted[0].Name != "root" || sorted[1].Name != "A" || sorted[2].Name != "B" {
			t.Fatalf("sorted order = [%s %s %s], want [root A B]", sorted[0].Name, sorted[1].Name, sorted[2].Name)
		}
		for i, def := range sorted {
			if def.ParentIndex != -1 && def.ParentIndex >= int32(i) {
				t.Errorf("bone %d (%s) has parent %d at or after itself", i, def.Name, def.ParentIndex)
			}
		}
		if oldToNew[1] != 0 || oldToNew[2] != 1 || oldToNew[0] != 2 {
			t.Errorf("oldToNew = %v, want {1:0 2:1 0:2}", oldToNew)
		}
	})

	t.Run("out of range parent", func(t *testing.T) {
		defs := []BoneDef{{Name: "orphan", ParentIndex: 5}}
		if _, _, err := SortBoneDefs(defs); !errors.Is(err, common.ErrInvalidArgument) {
			t.Errorf("SortBoneDefs error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		sorted, oldToNew, err := SortBoneDefs(nil)
		if err != nil || len(sorted) != 0 || len(oldToNew) != 0 {
			t.Errorf("SortBoneDefs(nil) = (%v, %v, %v), want empty", sorted, oldToNew, err)
		}
	})
}

func TestNewSkeletonFromDefs(t *testing.T) {
	defs := []BoneDef{
		{Name: "B", ParentIndex: 2, LocalBind: common.IdentityTransform()},
		{Name: "root", ParentIndex: -1, LocalBind: common.IdentityTransform()},
		{Name: "A", ParentIndex: 1, LocalBind: common.IdentityTransform()},
	}
	s, err := NewSkeletonFromDefs("rig", defs, WithCapacity(3))
	if err != nil {
		t.Fatalf("NewSkeletonFromDefs: %v", err)
	}
	if s.BoneCount() != 3 {
		t.Fatalf("BoneCount = %d, want 3", s.BoneCount())
	}
	if idx, _ := s.BoneIndex("root"); idx != 0 {
		t.Errorf("root index = %d, want 0", idx)
	}
	if !s.InSubtree(2, 0) {
		t.Error("B is not in root's subtree after sorted construction")
	}
}
