// Package tessellate walks a design graph and produces triangle meshes.
// Each placed thread part is built with pkg/thread into a fresh polygon
// mesh, checked, fan-triangulated and moved into the requested frame.
package tessellate

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/helix/pkg/design"
	"github.com/chazu/helix/pkg/logger"
	"github.com/chazu/helix/pkg/mesh"
	"github.com/chazu/helix/pkg/thread"
)

// transformStack accumulates placement transforms during graph traversal.
type transformStack struct {
	stack []sdf.M44
}

func newTransformStack() *transformStack {
	return &transformStack{stack: []sdf.M44{sdf.Identity3d()}}
}

// push composes td onto the current transform. Rotation is applied first
// (X, then Y, then Z, in degrees), then translation.
func (ts *transformStack) push(td design.TransformData) {
	local := sdf.Identity3d()
	if td.Translation != nil {
		local = sdf.Translate3d(*td.Translation)
	}
	if r := td.Rotation; r != nil {
		local = local.Mul(sdf.RotateZ(r.Z * math.Pi / 180.0)).
			Mul(sdf.RotateY(r.Y * math.Pi / 180.0)).
			Mul(sdf.RotateX(r.X * math.Pi / 180.0))
	}
	ts.stack = append(ts.stack, ts.current().Mul(local))
}

func (ts *transformStack) pop() {
	if len(ts.stack) > 1 {
		ts.stack = ts.stack[:len(ts.stack)-1]
	}
}

func (ts *transformStack) current() sdf.M44 {
	return ts.stack[len(ts.stack)-1]
}

// tessellator holds the state of one Tessellate call.
type tessellator struct {
	g     *design.Graph
	frame Frame
	ts    *transformStack
	// built caches the polygon mesh of each part; a part placed several
	// times is only built once.
	built map[design.NodeID]*part
	log   *zap.Logger
}

type part struct {
	mesh *mesh.Mesh
	topo mesh.Report
}

// Tessellate walks the design graph and produces one triangle mesh per
// placed part, in frame. The tessellator is read-only and never mutates
// the graph.
func Tessellate(g *design.Graph, frame Frame) ([]*Mesh, error) {
	if g == nil {
		return nil, nil
	}

	tt := &tessellator{
		g:     g,
		frame: frame,
		ts:    newTransformStack(),
		built: make(map[design.NodeID]*part),
		log:   logger.Named("tessellate"),
	}

	var meshes []*Mesh
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := tt.walkNode(root, 0)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// maxDepth guards the walk against cyclic graphs that skipped validation.
const maxDepth = 256

// walkNode recursively traverses a node and its children, collecting meshes.
func (tt *tessellator) walkNode(n *design.Node, depth int) ([]*Mesh, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("node %s: nesting deeper than %d", n.ID.Short(), maxDepth)
	}
	switch n.Kind {
	case design.NodePart:
		return tt.handlePart(n)
	case design.NodeTransform:
		return tt.handleTransform(n, depth)
	case design.NodeGroup:
		return tt.walkChildren(n, depth)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handlePart builds the thread of a part node and places it.
func (tt *tessellator) handlePart(n *design.Node) ([]*Mesh, error) {
	data, ok := n.Data.(design.PartData)
	if !ok {
		return nil, fmt.Errorf("part node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	name := n.Name
	if name == "" {
		name = n.ID.Short()
	}

	p, ok := tt.built[n.ID]
	if !ok {
		var err error
		p, err = tt.build(name, data.Params)
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", name, err)
		}
		tt.built[n.ID] = p
	}

	out := Triangulate(p.mesh, tt.ts.current(), tt.frame)
	out.PartName = name
	out.Watertight = p.topo.Watertight()
	return []*Mesh{out}, nil
}

// build generates the polygon mesh of one part and logs its topology.
func (tt *tessellator) build(name string, params thread.Params) (*part, error) {
	m, rep, err := thread.Generate(params)
	if err != nil {
		return nil, err
	}
	topo := mesh.Check(m)

	fields := []zap.Field{
		zap.String("part", name),
		zap.Int("vertices", rep.Vertices),
		zap.Int("polygons", rep.Polygons),
		zap.Int("sideQuads", rep.SideQuads),
		zap.Int("gapQuads", rep.GapQuads),
		zap.Int("openEdges", len(topo.Open)),
	}
	switch {
	case len(topo.NonManifold) > 0 || len(topo.Misoriented) > 0 || len(topo.Degenerate) > 0:
		tt.log.Warn("thread mesh has topology defects", append(fields,
			zap.Int("nonManifold", len(topo.NonManifold)),
			zap.Int("misoriented", len(topo.Misoriented)),
			zap.Int("degenerate", len(topo.Degenerate)))...)
	case !topo.Watertight():
		tt.log.Info("thread mesh is open", fields...)
	default:
		tt.log.Debug("thread mesh built", fields...)
	}
	return &part{mesh: m, topo: topo}, nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func (tt *tessellator) handleTransform(n *design.Node, depth int) ([]*Mesh, error) {
	td, ok := n.Data.(design.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	tt.ts.push(td)
	defer tt.ts.pop()
	return tt.walkChildren(n, depth)
}

// walkChildren recurses into children in order.
func (tt *tessellator) walkChildren(n *design.Node, depth int) ([]*Mesh, error) {
	var meshes []*Mesh
	for _, child := range tt.g.Children(n) {
		collected, err := tt.walkNode(child, depth+1)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// Triangulate fan-triangulates a polygon mesh built in the thread builder
// frame, applies the design-frame placement and converts into frame.
func Triangulate(src *mesh.Mesh, placement sdf.M44, frame Frame) *Mesh {
	pts := make([]v3.Vec, len(src.Vertices))
	for i, v := range src.Vertices {
		pts[i] = frame.fromDesign(placement.MulPosition(partToDesign(v)))
	}

	out := &Mesh{
		Vertices: make([]float32, 0, src.TriangleCount()*9),
		Normals:  make([]float32, 0, src.TriangleCount()*9),
		Indices:  make([]uint32, 0, src.TriangleCount()*3),
	}
	for _, poly := range src.Polygons {
		for k := 1; k+1 < len(poly); k++ {
			out.addTriangle(pts[poly[0]], pts[poly[k]], pts[poly[k+1]])
		}
	}
	return out
}
