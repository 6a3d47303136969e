package factory

// Combine concatenates sets phase by phase in argument order. The result
// never shares backing arrays with its inputs.
func Combine[S any, K comparable](sets ...Set[S, K]) Set[S, K] {
	var out Set[S, K]
	for _, s := range sets {
		out.Core = append(out.Core, s.Core...)
		out.Private = append(out.Private, s.Private...)
		out.Public = append(out.Public, s.Public...)
		out.Static = append(out.Static, s.Static...)
	}
	return out
}
