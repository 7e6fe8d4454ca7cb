package level

// Platform is a solid run on Row covering [Start, End).
type Platform struct {
	Row   int
	Start int
	End   int
}

func (p Platform) Len() int {
	return p.End - p.Start
}

// Center is the middle column, rounded down.
func (p Platform) Center() int {
	return p.Start + (p.End-p.Start-1)/2
}

// Overlap counts the columns shared with o.
func (p Platform) Overlap(o Platform) int {
	lo, hi := max(p.Start, o.Start), min(p.End, o.End)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// EdgeGap is the number of columns strictly between the two runs, 0 if they overlap or touch.
func (p Platform) EdgeGap(o Platform) int {
	switch {
	case o.Start >= p.End:
		return o.Start - p.End
	case p.Start >= o.End:
		return p.Start - o.End
	}
	return 0
}

// Stamp writes the platform into g as Solid.
func (p Platform) Stamp(g *Grid) {
	for c := p.Start; c < p.End; c++ {
		g.Set(c, p.Row, Solid)
	}
}
