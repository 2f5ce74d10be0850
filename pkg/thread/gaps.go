package thread

// closeGaps closes the seam that stitch leaves open. The last step of strip
// j (between rings j and j+1) continues one turn higher as step 0 of strip
// j+2, so each interior turn boundary gets two quads: one for the
// inner-to-outer strip and one for the outer-to-inner strip.
//
// The first two strips have no predecessor and the last two no successor;
// their open seam ends are closed by the lead caps.
func (b *builder) closeGaps(hx Helix) {
	r := hx.Rings
	for rot := 0; rot < hx.Turns()-1; rot++ {
		for j := 2 * rot; j < 2*rot+2; j++ {
			b.poly(&b.rep.GapQuads, r[j+2].At(0), r[j+3].At(0), r[j+1].Last(), r[j].Last())
		}
	}
}
