package skeleton

import (
	"fmt"

	"github.com/Carmen-Shannon/anim-go/common"
	"github.com/Carmen-Shannon/anim-go/common/logging"
)

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for lookup and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones).
	// The skeleton guarantees ParentIndex < the bone's own index, so
	// iterating bones in index order always visits parents first.
	ParentIndex int32

	// LocalBind is the bone's bind-pose transform relative to its parent:
	// the rest configuration absent any animation.
	LocalBind common.Transform

	// InverseBindMatrix transforms from model space to bone space at bind
	// pose. This is the inverse of the bone's world transform when the mesh
	// was bound.
	InverseBindMatrix [16]float32
}

// skeleton is the implementation of the Skeleton interface.
type skeleton struct {
	name string

	bones       []Bone
	boneIndex   map[string]int32
	rootIndices []int32

	// Flat 16-floats-per-bone matrix storage for hierarchy propagation.
	// globals holds the model-space transform of each bone for the current
	// pose; finals holds globals * inverseBind, the skin matrices consumed
	// by the rendering collaborator.
	globals []float32
	finals  []float32

	// scratch matrix reused across ApplyLocalPose calls.
	localScratch [16]float32
}

// Skeleton defines the public interface for a bone hierarchy.
//
// A Skeleton is a single-owner, single-goroutine resource: the entity that
// created it owns it, a controller holds a non-owning reference, and callers
// must not mutate it concurrently with a controller update that drives it.
// Bones are stored in topological order (parents strictly before children),
// which every hierarchy-propagation routine relies on.
type Skeleton interface {
	// Name returns the skeleton's identifier.
	//
	// Returns:
	//   - string: the skeleton name
	Name() string

	// AddBone appends a bone to the hierarchy. The parent must already have
	// been added (parentIndex strictly smaller than the new bone's index) or
	// be -1 for a root bone. Adding a bone whose name already exists is
	// idempotent: the existing bone's index is returned and a warning is
	// logged, storage is unchanged.
	//
	// Parameters:
	//   - name: the bone identifier
	//   - parentIndex: index of the parent bone, or -1 for roots
	//   - localBind: the bind-pose transform relative to the parent
	//   - inverseBind: the inverse bind matrix (16 floats, column-major)
	//
	// Returns:
	//   - int32: the index of the new (or existing) bone
	//   - error: ErrInvalidArgument if name is empty or parentIndex is invalid
	AddBone(name string, parentIndex int32, localBind common.Transform, inverseBind [16]float32) (int32, error)

	// BoneCount returns the number of bones in the skeleton.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// Bone returns a copy of the bone at the given index.
	//
	// Parameters:
	//   - index: the bone index
	//
	// Returns:
	//   - Bone: the bone data
	//   - error: ErrNotFound if index is out of range
	Bone(index int32) (Bone, error)

	// BoneIndex looks up a bone by name. Lookup is O(1) amortized.
	//
	// Parameters:
	//   - name: the bone name
	//
	// Returns:
	//   - int32: the bone index
	//   - bool: true if the bone exists
	BoneIndex(name string) (int32, bool)

	// RootIndices returns the indices of all bones with no parent.
	//
	// Returns:
	//   - []int32: root bone indices in ascending order
	RootIndices() []int32

	// InSubtree reports whether a bone lies in the sub-hierarchy rooted at
	// another bone. A bone is in its own subtree.
	//
	// Parameters:
	//   - bone: the bone index to test
	//   - root: the subtree root index
	//
	// Returns:
	//   - bool: true if bone equals root or root is among bone's ancestors
	InSubtree(bone, root int32) bool

	// ApplyLocalPose composes the given per-bone local transforms through
	// the hierarchy and stores the resulting skin matrices. Roots take their
	// local matrix directly, children take parentGlobal * local, and the
	// final matrix for each bone is global * inverseBind.
	//
	// Parameters:
	//   - pose: one local transform per bone, indexed like the bone array
	//
	// Returns:
	//   - error: ErrInvalidArgument if len(pose) does not equal BoneCount
	ApplyLocalPose(pose []common.Transform) error

	// FinalTransform returns the final skin matrix of a bone as computed by
	// the most recent ApplyLocalPose. Before any pose has been applied the
	// matrix is identity.
	//
	// Parameters:
	//   - index: the bone index
	//
	// Returns:
	//   - [16]float32: the final skin matrix, column-major
	//   - error: ErrNotFound if index is out of range
	FinalTransform(index int32) ([16]float32, error)

	// ComputeInverseBindMatrices derives every bone's inverse bind matrix
	// from the bind-pose hierarchy, overwriting any inverse binds supplied
	// at AddBone time. Useful for skeletons authored in memory without
	// precomputed inverse binds. Bones whose bind-pose world matrix is
	// singular keep their existing inverse bind and are logged as warnings.
	ComputeInverseBindMatrices()
}

var _ Skeleton = &skeleton{}

// NewSkeleton creates a new, empty skeleton.
//
// Parameters:
//   - name: the skeleton identifier
//   - options: functional options applied after construction
//
// Returns:
//   - Skeleton: the new skeleton
func NewSkeleton(name string, options ...SkeletonBuilderOption) Skeleton {
	s := &skeleton{
		name:      name,
		boneIndex: make(map[string]int32),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *skeleton) Name() string {
	return s.name
}

func (s *skeleton) AddBone(name string, parentIndex int32, localBind common.Transform, inverseBind [16]float32) (int32, error) {
	if name == "" {
		return -1, fmt.Errorf("skeleton %q: bone name must not be empty: %w", s.name, common.ErrInvalidArgument)
	}
	if parentIndex != -1 && (parentIndex < 0 || int(parentIndex) >= len(s.bones)) {
		return -1, fmt.Errorf("skeleton %q: bone %q parent index %d must reference an already-added bone or be -1: %w",
			s.name, name, parentIndex, common.ErrInvalidArgument)
	}

	if idx, ok := s.boneIndex[name]; ok {
		logging.Warn("duplicate bone, returning existing", "skeleton", s.name, "bone", name, "index", idx)
		return idx, nil
	}

	idx := int32(len(s.bones))
	s.bones = append(s.bones, Bone{
		Name:              name,
		ParentIndex:       parentIndex,
		LocalBind:         localBind,
		InverseBindMatrix: inverseBind,
	})
	s.boneIndex[name] = idx
	if parentIndex == -1 {
		s.rootIndices = append(s.rootIndices, idx)
	}

	s.globals = append(s.globals, make([]float32, 16)...)
	s.finals = append(s.finals, make([]float32, 16)...)
	common.Identity(s.globals[idx*16 : (idx+1)*16])
	common.Identity(s.finals[idx*16 : (idx+1)*16])

	return idx, nil
}

func (s *skeleton) BoneCount() int {
	return len(s.bones)
}

func (s *skeleton) Bone(index int32) (Bone, error) {
	if index < 0 || int(index) >= len(s.bones) {
		return Bone{}, fmt.Errorf("skeleton %q: bone index %d out of range [0, %d): %w", s.name, index, len(s.bones), common.ErrNotFound)
	}
	return s.bones[index], nil
}

func (s *skeleton) BoneIndex(name string) (int32, bool) {
	idx, ok := s.boneIndex[name]
	return idx, ok
}

func (s *skeleton) RootIndices() []int32 {
	return s.rootIndices
}

func (s *skeleton) InSubtree(bone, root int32) bool {
	if bone < 0 || int(bone) >= len(s.bones) || root < 0 || int(root) >= len(s.bones) {
		return false
	}
	for cur := bone; cur != -1; cur = s.bones[cur].ParentIndex {
		if cur == root {
			return true
		}
	}
	return false
}

func (s *skeleton) ApplyLocalPose(pose []common.Transform) error {
	if len(pose) != len(s.bones) {
		return fmt.Errorf("skeleton %q: pose has %d transforms, want %d: %w", s.name, len(pose), len(s.bones), common.ErrInvalidArgument)
	}

	// Bones are stored parents-first, so a single ascending pass sees every
	// parent's global matrix before its children need it.
	for i := range s.bones {
		pose[i].Matrix(s.localScratch[:])

		global := s.globals[i*16 : (i+1)*16]
		if parent := s.bones[i].ParentIndex; parent == -1 {
			copy(global, s.localScratch[:])
		} else {
			common.Mul4(global, s.globals[parent*16:(parent+1)*16], s.localScratch[:])
		}

		inv := s.bones[i].InverseBindMatrix
		common.Mul4(s.finals[i*16:(i+1)*16], global, inv[:])
	}
	return nil
}

func (s *skeleton) FinalTransform(index int32) ([16]float32, error) {
	if index < 0 || int(index) >= len(s.bones) {
		return common.IdentityMatrix(), fmt.Errorf("skeleton %q: bone index %d out of range [0, %d): %w", s.name, index, len(s.bones), common.ErrNotFound)
	}
	var out [16]float32
	copy(out[:], s.finals[index*16:(index+1)*16])
	return out, nil
}

func (s *skeleton) ComputeInverseBindMatrices() {
	// Bind-pose world matrices, computed with the same parents-first pass as
	// ApplyLocalPose.
	worlds := make([]float32, len(s.bones)*16)
	var local [16]float32
	for i := range s.bones {
		s.bones[i].LocalBind.Matrix(local[:])
		world := worlds[i*16 : (i+1)*16]
		if parent := s.bones[i].ParentIndex; parent == -1 {
			copy(world, local[:])
		} else {
			common.Mul4(world, worlds[parent*16:(parent+1)*16], local[:])
		}
	}

	var inv [16]float32
	for i := range s.bones {
		if !common.Invert4(inv[:], worlds[i*16:(i+1)*16]) {
			logging.Warn("singular bind-pose world matrix, keeping existing inverse bind", "skeleton", s.name, "bone", s.bones[i].Name)
			continue
		}
		s.bones[i].InverseBindMatrix = inv
	}
}
