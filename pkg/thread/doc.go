// Package thread builds the polygon mesh of a threaded cylinder.
//
// The mesh is a helical ribbon of rings (inner core ring, outer crest ring,
// repeated once per turn, plus a closing inner ring on the last turn),
// stitched into quad strips. The wrap-around seam of every turn is closed
// separately, and optional lead-in and lead-out caps bridge the helix to
// flat rings and fan-triangulated lids, producing a closed solid.
//
// The builder frame is Y-up. Polygons are wound clockwise when seen from
// outside the solid; consumers that expect counter-clockwise front faces
// convert with a reflecting frame map (see package tessellate).
//
// Build is a pure function of its Params: it validates them, then only ever
// appends to the given mesh.Sink.
package thread
