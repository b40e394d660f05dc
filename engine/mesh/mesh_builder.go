package mesh

// PartSetBuilderOption is a functional option for configuring a PartSet.
type PartSetBuilderOption func(*partSet)

// WithParts adds initial parts. Invalid parts are skipped individually; use PartSet.Add to get the error.
//
// Parameters:
//   - parts: the parts to add
//
// Returns:
//   - PartSetBuilderOption: option function to apply
func WithParts(parts ...Part) PartSetBuilderOption {
	return func(ps *partSet) {
		for _, p := range parts {
			_ = ps.add([]Part{p})
		}
	}
}
