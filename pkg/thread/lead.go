package thread

import v3 "github.com/deadsy/sdfx/vec/v3"

// LeadReport counts the polygons of one lead cap.
type LeadReport struct {
	Stitch int // quads and the split triangle between flat ring and helix
	Seam   int // polygons bridging the seam through the midpoint
	Lid    int // fan triangles of the flat lid
}

// Total returns the number of polygons of the cap.
func (r LeadReport) Total() int {
	return r.Stitch + r.Seam + r.Lid
}

// leadIn bridges the bottom of the helix to a flat ring at y = 0 and closes
// it with a lid.
//
// The midpoint M sits half a turn height below the last vertex of the first
// ring, on the edge between the flat ring and the helix. The stitch step
// owning that edge is split at M so that no T-junction remains.
func (b *builder) leadIn(hx Helix) {
	r := hx.Rings
	r0, r1, r2 := r[0], r[1], r[2]
	steps := b.p.StepsPerTurn
	n := &b.rep.LeadIn

	flat := b.ring(RingFlat, b.p.InnerRadius, 0, 0, false)
	mid := b.offsetVertex(r0.Last(), -b.p.HeightPerTurn/2)

	b.stitchRange(flat, r0, 0, steps-2, &n.Stitch)
	b.poly(&n.Stitch, flat.At(steps-2), flat.Last(), mid, r0.At(steps-2))
	b.poly(&n.Stitch, mid, r0.Last(), r0.At(steps-2))

	b.poly(&n.Seam, r1.At(0), r2.At(0), mid)
	b.poly(&n.Seam, r1.At(0), mid, r0.At(0))
	b.poly(&n.Seam, r2.At(0), r0.Last(), mid)
	b.poly(&n.Seam, flat.At(0), r0.At(0), mid, flat.Last())

	center := b.vertex(v3.Vec{})
	for i := 0; i < steps-1; i++ {
		b.poly(&n.Lid, center, flat.At(i+1), flat.At(i))
	}
	b.poly(&n.Lid, center, flat.At(0), flat.Last())
}

// leadOut bridges the closing ring to a flat ring one lead length above the
// top of the thread and closes it with a lid. The midpoint sits half a turn
// height above step 0 of the closing ring.
func (b *builder) leadOut(hx Helix) {
	r := hx.Rings
	k := len(r) - 1
	top, below, twoBelow := r[k], r[k-1], r[k-2]
	p := b.p
	n := &b.rep.LeadOut

	yFlat := float64(p.Turns)*p.HeightPerTurn + p.VerticalOffset()
	flat := b.ring(RingFlat, p.InnerRadius, yFlat, p.HeightPerTurn+p.LeadLength, false)
	mid := b.offsetVertex(top.At(0), p.HeightPerTurn/2)

	b.poly(&n.Stitch, top.At(1), flat.At(1), flat.At(0), mid)
	b.poly(&n.Stitch, mid, top.At(0), top.At(1))
	b.stitchRange(top, flat, 1, p.StepsPerTurn-1, &n.Stitch)

	b.poly(&n.Seam, top.Last(), below.Last(), mid)
	b.poly(&n.Seam, below.Last(), twoBelow.Last(), mid)
	b.poly(&n.Seam, flat.Last(), top.Last(), mid, flat.At(0))
	b.poly(&n.Seam, twoBelow.Last(), top.At(0), mid)

	center := b.vertex(v3.Vec{Y: yFlat + p.HeightPerTurn + p.LeadLength})
	for i := 0; i < p.StepsPerTurn-1; i++ {
		b.poly(&n.Lid, flat.At(i), flat.At(i+1), center)
	}
	b.poly(&n.Lid, flat.At(0), center, flat.Last())
}
