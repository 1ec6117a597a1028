package matcher

// state identifies a node in the alignment search tree: cursor positions
// into both strings plus the running imbalance.
type state struct {
	i, j      int
	imbalance int
}

// search holds the bookkeeping for one Equivalent call. The memo table is
// created fresh per call and never shared (the matcher stays stateless).
type search struct {
	left   string
	right  string
	window int
	memo   map[state]bool
}

// match is the alignment search. imbalance is the signed count of skipped
// positions the left string has claimed but the right string has not yet
// supplied: positive means the right side owes letters or digit values,
// negative is the symmetric case. imbalance == 0 means the cursors are in
// sync and letters must match character for character.
func (s *search) match(i, j, imbalance int) bool {
	if i == len(s.left) && j == len(s.right) {
		return imbalance == 0
	}
	key := state{i, j, imbalance}
	if v, ok := s.memo[key]; ok {
		return v
	}
	var ok bool
	switch {
	case imbalance == 0:
		ok = s.matchSync(i, j)
	case imbalance > 0:
		ok = s.consumeRight(i, j, imbalance)
	default:
		ok = s.consumeLeft(i, j, imbalance)
	}
	s.memo[key] = ok
	return ok
}

// matchSync handles the synchronized state. Letters must match pairwise; when
// both cursors sit on digits, a prefix is taken from each run at once and the
// difference of their values becomes the new imbalance, so a zero-valued run
// on one side can never strand the other. A run facing an already exhausted
// string is consumed alone. A letter facing a digit fails: letters are never
// skippable.
func (s *search) matchSync(i, j int) bool {
	moreL := i < len(s.left)
	moreR := j < len(s.right)
	switch {
	case moreL && moreR && isLetter(s.left[i]) && isLetter(s.right[j]):
		return s.left[i] == s.right[j] && s.match(i+1, j+1, 0)

	case moreL && moreR && isDigit(s.left[i]) && isDigit(s.right[j]):
		for n := 1; n <= s.window && i+n <= len(s.left) && isDigit(s.left[i+n-1]); n++ {
			for _, v := range segmentValues(s.left[i : i+n]) {
				for m := 1; m <= s.window && j+m <= len(s.right) && isDigit(s.right[j+m-1]); m++ {
					for _, w := range segmentValues(s.right[j : j+m]) {
						if s.match(i+n, j+m, v-w) {
							return true
						}
					}
				}
			}
		}
		return false

	case moreL && !moreR && isDigit(s.left[i]):
		for n := 1; n <= s.window && i+n <= len(s.left) && isDigit(s.left[i+n-1]); n++ {
			for _, v := range segmentValues(s.left[i : i+n]) {
				if s.match(i+n, j, v) {
					return true
				}
			}
		}
		return false

	case !moreL && moreR && isDigit(s.right[j]):
		for n := 1; n <= s.window && j+n <= len(s.right) && isDigit(s.right[j+n-1]); n++ {
			for _, v := range segmentValues(s.right[j : j+n]) {
				if s.match(i, j+n, -v) {
					return true
				}
			}
		}
		return false
	}
	return false
}

// consumeRight resolves positive imbalance from the right string: one letter
// pays off a single unit, or any digit prefix within the window pays off any
// of its enumerated values. Prefix lengths shorter than the full run are
// tried too, because a later slice of the same run may need to be consumed
// under the opposite imbalance sign.
func (s *search) consumeRight(i, j, imbalance int) bool {
	if j >= len(s.right) {
		return false
	}
	if isLetter(s.right[j]) {
		return s.match(i, j+1, imbalance-1)
	}
	for n := 1; n <= s.window && j+n <= len(s.right) && isDigit(s.right[j+n-1]); n++ {
		for _, v := range segmentValues(s.right[j : j+n]) {
			if s.match(i, j+n, imbalance-v) {
				return true
			}
		}
	}
	return false
}

// consumeLeft is the mirror of consumeRight for negative imbalance.
func (s *search) consumeLeft(i, j, imbalance int) bool {
	if i >= len(s.left) {
		return false
	}
	if isLetter(s.left[i]) {
		return s.match(i+1, j, imbalance+1)
	}
	for n := 1; n <= s.window && i+n <= len(s.left) && isDigit(s.left[i+n-1]); n++ {
		for _, v := range segmentValues(s.left[i : i+n]) {
			if s.match(i+n, j, imbalance+v) {
				return true
			}
		}
	}
	return false
}
