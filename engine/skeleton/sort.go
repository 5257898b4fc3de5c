package skeleton

import (
	"fmt"

	"github.com/Carmen-Shannon/anim-go/common"
)

// BoneDef describes one bone of a skeleton before construction. Unlike
// AddBone, definitions may appear in any order; SortBoneDefs reorders them
// so parents precede children and remaps parent indices accordingly.
type BoneDef struct {
	// Name is the bone identifier.
	Name string

	// ParentIndex is the index of the parent within the defs slice, or -1
	// for root bones.
	ParentIndex int32

	// LocalBind is the bind-pose transform relative to the parent.
	LocalBind common.Transform

	// InverseBindMatrix is the inverse bind matrix. Leave zero and call
	// Skeleton.ComputeInverseBindMatrices when it is not known up front.
	InverseBindMatrix [16]float32
}

// SortBoneDefs sorts bone definitions so that parents always come before
// children, returning the sorted slice and the old-to-new index mapping.
// Definitions unreachable from any root (for example, members of a parent
// cycle) are appended after the reachable ones with their original parent
// references remapped.
//
// Parameters:
//   - defs: bone definitions in any order
//
// Returns:
//   - []BoneDef: sorted definitions with remapped parent indices
//   - map[int32]int32: mapping from old definition index to new index
//   - error: ErrInvalidArgument if a parent index is out of range
func SortBoneDefs(defs []BoneDef) ([]BoneDef, map[int32]int32, error) {
	if len(defs) == 0 {
		return defs, make(map[int32]int32), nil
	}

	// Build children map and collect roots (old indices).
	children := make(map[int32][]int32)
	var roots []int32
	for i, def := range defs {
		switch {
		case def.ParentIndex == -1:
			roots = append(roots, int32(i))
		case def.ParentIndex < 0 || int(def.ParentIndex) >= len(defs):
			return nil, nil, fmt.Errorf("bone def %q: parent index %d out of range: %w", def.Name, def.ParentIndex, common.ErrInvalidArgument)
		default:
			children[def.ParentIndex] = append(children[def.ParentIndex], int32(i))
		}
	}

	// BFS from roots to get topological order.
	sorted := make([]int32, 0, len(defs))
	queue := append(make([]int32, 0, len(roots)), roots...)
	for len(queue) > 0 {
		oldIdx := queue[0]
		queue = queue[1:]
		sorted = append(sorted, oldIdx)
		queue = append(queue, children[oldIdx]...)
	}

	// Append anything unreachable from a root.
	if len(sorted) < len(defs) {
		visited := make(map[int32]bool, len(sorted))
		for _, idx := range sorted {
			visited[idx] = true
		}
		for i := range defs {
			if !visited[int32(i)] {
				sorted = append(sorted, int32(i))
			}
		}
	}

	oldToNew := make(map[int32]int32, len(sorted))
	for newIdx, oldIdx := range sorted {
		oldToNew[oldIdx] = int32(newIdx)
	}

	out := make([]BoneDef, len(defs))
	for newIdx, oldIdx := range sorted {
		def := defs[oldIdx]
		if def.ParentIndex >= 0 {
			def.ParentIndex = oldToNew[def.ParentIndex]
		}
		out[newIdx] = def
	}

	return out, oldToNew, nil
}

// NewSkeletonFromDefs builds a skeleton from bone definitions in any order,
// sorting them topologically first. Duplicate names follow AddBone's
// idempotency; the returned skeleton's indices follow the sorted order.
//
// Parameters:
//   - name: the skeleton identifier
//   - defs: bone definitions in any order
//   - options: functional options applied before the bones are added
//
// Returns:
//   - Skeleton: the constructed skeleton, nil on error
//   - error: ErrInvalidArgument on bad parent references or empty names
func NewSkeletonFromDefs(name string, defs []BoneDef, options ...SkeletonBuilderOption) (Skeleton, error) {
	sorted, _, err := SortBoneDefs(defs)
	if err != nil {
		return nil, fmt.Errorf("skeleton %q: %w", name, err)
	}

	s := NewSkeleton(name, options...)
	for _, def := range sorted {
		if _, err := s.AddBone(def.Name, def.ParentIndex, def.LocalBind, def.InverseBindMatrix); err != nil {
			return nil, err
		}
	}
	return s, nil
}
