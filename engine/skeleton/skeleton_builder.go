package skeleton

// SkeletonBuilderOption is a functional option for configuring a Skeleton during construction.
type SkeletonBuilderOption func(*skeleton)

// WithCapacity is an option builder that preallocates storage for the
// expected number of bones, avoiding reallocation while the hierarchy is
// assembled.
//
// Parameters:
//   - bones: the expected bone count
//
// Returns:
//   - SkeletonBuilderOption: a function that applies the capacity to a skeleton
func WithCapacity(bones int) SkeletonBuilderOption {
	return func(s *skeleton) {
		if bones <= 0 {
			return
		}
		s.bones = make([]Bone, 0, bones)
		s.globals = make([]float32, 0, bones*16)
		s.finals = make([]float32, 0, bones*16)
	}
}
