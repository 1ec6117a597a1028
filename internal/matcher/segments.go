package matcher

import "sort"

// segmentValues returns every integer obtainable by partitioning run into
// one, two or three consecutive non-empty decimal pieces and summing their
// values. Leading zeros parse as their numeric value ("05" is 5). The result
// is deduplicated and sorted so traversal order is deterministic. The empty
// run maps to {0} as a degenerate base case; mid-string runs are non-empty
// by construction.
func segmentValues(run string) []int {
	if run == "" {
		return []int{0}
	}
	n := len(run)
	seen := make(map[int]struct{}, n*n)
	seen[atoi(run)] = struct{}{}
	for a := 1; a < n; a++ {
		seen[atoi(run[:a])+atoi(run[a:])] = struct{}{}
		for b := a + 1; b < n; b++ {
			seen[atoi(run[:a])+atoi(run[a:b])+atoi(run[b:])] = struct{}{}
		}
	}
	vals := make([]int, 0, len(seen))
	for v := range seen {
		vals = append(vals, v)
	}
	sort.Ints(vals)
	return vals
}

// atoi parses an all-digit ASCII string. Inputs are pre-validated slices of
// a digit run, so no error path is needed.
func atoi(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		v = v*10 + int(s[i]-'0')
	}
	return v
}
