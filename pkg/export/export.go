// Package export writes tessellated meshes to STL files with the sdfx render
// package and to 3MF files with go3mf.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hpinc/go3mf"
	"go.uber.org/zap"

	"github.com/chazu/helix/pkg/logger"
	"github.com/chazu/helix/pkg/tessellate"
)

// ErrEmpty is returned when there is nothing to write.
var ErrEmpty = errors.New("export: no triangles")

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format is an output file format.
type Format int

const (
	FormatSTL Format = iota
	Format3MF
)

func (f Format) String() string {
	switch f {
	case FormatSTL:
		return "stl"
	case Format3MF:
		return "3mf"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat accepts "stl" or "3mf" in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "stl":
		return FormatSTL, nil
	case "3mf":
		return Format3MF, nil
	}
	return FormatSTL, fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Triangles converts meshes into the sdfx triangle list. Parts are merged
// into one list in order.
func Triangles(meshes []*tessellate.Mesh) []*sdf.Triangle3 {
	n := 0
	for _, m := range meshes {
		n += m.TriangleCount()
	}
	tris := make([]*sdf.Triangle3, 0, n)
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			c := m.Triangle(i)
			tris = append(tris, &sdf.Triangle3{c[0], c[1], c[2]})
		}
	}
	return tris
}

// Write saves meshes to path in format.
func Write(path string, format Format, meshes []*tessellate.Mesh) error {
	tris := Triangles(meshes)
	if len(tris) == 0 {
		return ErrEmpty
	}

	var err error
	switch format {
	case FormatSTL:
		err = render.SaveSTL(path, tris)
	case Format3MF:
		err = write3MF(path, meshes)
	default:
		return fmt.Errorf("%w %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}

	logger.Named("export").Info("mesh written",
		zap.String("path", path),
		zap.Stringer("format", format),
		zap.Int("parts", len(meshes)),
		zap.Int("triangles", len(tris)))
	return nil
}

// write3MF stores each part as its own named object with deduplicated
// vertices, all placed in the build at the identity transform.
func write3MF(path string, meshes []*tessellate.Mesh) (err error) {
	var model go3mf.Model
	for _, m := range meshes {
		if m.TriangleCount() == 0 {
			continue
		}
		var msh go3mf.Mesh
		mb := go3mf.NewMeshBuilder(&msh)
		for i := 0; i < m.TriangleCount(); i++ {
			c := m.Triangle(i)
			msh.Triangles.Triangle = append(msh.Triangles.Triangle, go3mf.Triangle{
				V1: mb.AddVertex(toPoint3D(c[0])),
				V2: mb.AddVertex(toPoint3D(c[1])),
				V3: mb.AddVertex(toPoint3D(c[2])),
			})
		}
		obj := &go3mf.Object{Name: m.PartName, Mesh: &msh}
		obj.ID = model.Resources.UnusedID()
		model.Resources.Objects = append(model.Resources.Objects, obj)
		model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: obj.ID})
	}

	w, err := go3mf.CreateWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return w.Encode(&model)
}

func toPoint3D(v v3.Vec) go3mf.Point3D {
	return go3mf.Point3D{float32(v.X), float32(v.Y), float32(v.Z)}
}
