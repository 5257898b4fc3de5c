package clip

// ClipBuilderOption is a functional option for configuring a Clip during construction.
type ClipBuilderOption func(*clip)

// WithBoneChannels is an option builder that pre-creates empty channels for
// the given bone names, in order. Empty names are skipped; duplicate names
// collapse to the first occurrence (same idempotency as AddBoneChannel).
//
// Parameters:
//   - boneNames: the bones to create channels for
//
// Returns:
//   - ClipBuilderOption: a function that applies the channels to a clip
func WithBoneChannels(boneNames ...string) ClipBuilderOption {
	return func(c *clip) {
		for _, name := range boneNames {
			if name == "" {
				continue
			}
			_, _ = c.AddBoneChannel(name)
		}
	}
}
