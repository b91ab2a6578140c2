package tree

// Alignment is the best match of a target span among the nodes of a tree.
type Alignment struct {
	// Span is the covered range of the max-F1 node.
	Span Span

	// F1 is the token F1 between Span and the target.
	F1 float64

	// Exact reports whether some node covers exactly the target.
	Exact bool
}

// Align finds the phrase node whose span has the highest token F1 with
// target. Equal scores prefer the smaller span, then the leftmost start.
// Spans must have been set (Parse does it).
func Align(t *Tree, target Span) Alignment {
	var best Alignment
	var bestScore score
	found := false

	for _, n := range t.Subtrees() {
		s := n.span
		if s == target {
			best.Exact = true
		}

		sc := newScore(s, target)
		if !found || better(sc, s, bestScore, best.Span) {
			best.Span = s
			bestScore = sc
			found = true
		}
	}

	best.F1 = bestScore.f1()
	return best
}

// score is F1 as the exact fraction 2*overlap / (len(a)+len(b)).
type score struct {
	overlap int
	total   int
}

func newScore(a, b Span) score {
	return score{overlap: Overlap(a, b), total: a.Len() + b.Len()}
}

// cmp compares two scores without rounding.
func (s score) cmp(o score) int {
	l := s.overlap * o.total
	r := o.overlap * s.total
	switch {
	case l > r:
		return 1
	case l < r:
		return -1
	}
	return 0
}

func (s score) f1() float64 {
	if s.overlap == 0 {
		return 0
	}
	return 2 * float64(s.overlap) / float64(s.total)
}

func better(sc score, s Span, bestScore score, bestSpan Span) bool {
	if c := sc.cmp(bestScore); c != 0 {
		return c > 0
	}
	if s.Len() != bestSpan.Len() {
		return s.Len() < bestSpan.Len()
	}
	return s.Start < bestSpan.Start
}

// Contains reports whether some node of t covers exactly span.
func Contains(t *Tree, span Span) bool {
	for _, n := range t.Subtrees() {
		if n.span == span {
			return true
		}
	}
	return false
}

// F1 is the harmonic mean of precision and recall over the tokens shared by
// two ranges. It is symmetric and 0 when the ranges do not overlap.
func F1(a, b Span) float64 {
	return newScore(a, b).f1()
}

// Overlap returns the number of tokens in both ranges.
func Overlap(a, b Span) int {
	start := max(a.Start, b.Start)
	stop := min(a.Stop, b.Stop)
	if stop <= start {
		return 0
	}
	return stop - start
}
