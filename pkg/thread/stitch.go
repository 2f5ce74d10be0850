package thread

import "fmt"

// stitch connects lower to upper with one quad per step, leaving the
// wrap-around edge between the last step and step 0 open.
func (b *builder) stitch(lower, upper Ring, count *int) {
	b.stitchRange(lower, upper, 0, lower.Size-1, count)
}

// stitchRange emits the quads for steps [from, to).
func (b *builder) stitchRange(lower, upper Ring, from, to int, count *int) {
	if lower.Size != upper.Size {
		b.fail(fmt.Errorf("thread: stitch %v to %v: ring sizes differ", lower, upper))
		return
	}
	for i := from; i < to; i++ {
		b.poly(count, lower.At(i), lower.At(i+1), upper.At(i+1), upper.At(i))
	}
}
