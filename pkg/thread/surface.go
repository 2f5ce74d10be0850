package thread

// Helix holds the rings of the threaded surface in emission order: inner
// and outer ring per turn, then the closing ring of the last turn.
type Helix struct {
	Rings []Ring
}

// Turns returns the number of turns the helix spans.
func (h Helix) Turns() int {
	return (len(h.Rings) - 1) / 2
}

// Bottom returns the first inner ring.
func (h Helix) Bottom() Ring {
	return h.Rings[0]
}

// Top returns the closing ring.
func (h Helix) Top() Ring {
	return h.Rings[len(h.Rings)-1]
}

// buildSides emits the rings of every turn and the quad strips between
// consecutive rings: inner to outer, then outer to the next inner.
func (b *builder) buildSides() Helix {
	p := b.p
	h := p.HeightPerTurn
	yOff := p.VerticalOffset()

	rings := make([]Ring, 0, 2*p.Turns+1)
	var prevOuter Ring
	for rot := 0; rot < p.Turns; rot++ {
		yLow := float64(rot)*h + yOff
		yMid := yLow + h/2

		inner := b.ring(RingInner, p.InnerRadius, yLow, h, true)
		if rot > 0 {
			b.stitch(prevOuter, inner, &b.rep.SideQuads)
		}

		outer := b.ring(RingOuter, p.OuterRadius, yMid, h, true)
		b.stitch(inner, outer, &b.rep.SideQuads)
		rings = append(rings, inner, outer)

		if rot+1 == p.Turns {
			closing := b.ring(RingClosing, p.InnerRadius, yLow+h, h, true)
			b.stitch(outer, closing, &b.rep.SideQuads)
			rings = append(rings, closing)
		}
		prevOuter = outer
	}
	return Helix{Rings: rings}
}
