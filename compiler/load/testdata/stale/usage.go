package stale

// Movie has no Values method until it is regenerated.
func values(m *Movie) []any { return m.Values() }
