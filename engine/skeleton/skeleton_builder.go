package skeleton

// SkeletonBuilderOption is a functional option for configuring a Skeleton.
// Use the With* functions to create options.
type SkeletonBuilderOption func(*skeleton)

// WithName sets the display name of the skeleton.
//
// Parameters:
//   - name: the skeleton name
//
// Returns:
//   - SkeletonBuilderOption: option function to apply
func WithName(name string) SkeletonBuilderOption {
	return func(s *skeleton) {
		s.name = name
	}
}

// WithBones adds initial bones to the skeleton.
// Bones that fail validation (empty or duplicate ID, cycle) are skipped individually,
// so presets can be built without error plumbing. Use Skeleton.Add to get the error.
//
// Parameters:
//   - bones: the bones to add, parents before or after children
//
// Returns:
//   - SkeletonBuilderOption: option function to apply
func WithBones(bones ...Bone) SkeletonBuilderOption {
	return func(s *skeleton) {
		for _, b := range bones {
			_ = s.add([]Bone{b})
		}
	}
}
