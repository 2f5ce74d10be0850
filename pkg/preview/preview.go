// Package preview renders a shaded thumbnail of tessellated meshes and
// saves it as PNG or WebP.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/chazu/helix/pkg/tessellate"
)

// ErrUnknownImageFormat is returned by Save for extensions other than
// .png and .webp.
var ErrUnknownImageFormat = errors.New("preview: unknown image format")

// palette mirrors the viewer colors.
var palette = []color.NRGBA{
	{0x4A, 0x90, 0xD9, 0xFF}, {0xE6, 0x7E, 0x22, 0xFF}, {0x2E, 0xCC, 0x71, 0xFF}, {0x9B, 0x59, 0xB6, 0xFF},
	{0xE7, 0x4C, 0x3C, 0xFF}, {0x1A, 0xBC, 0x9C, 0xFF}, {0xF3, 0x9C, 0x12, 0xFF}, {0x34, 0x98, 0xDB, 0xFF},
}

// Options controls the camera and output size. Meshes are expected Z-up.
type Options struct {
	Size        int         // output width and height in pixels
	Supersample int         // render scale before downsampling
	Yaw         float32     // degrees around the up axis
	Pitch       float32     // degrees above the horizon
	Margin      float32     // fraction of the image left empty on each side
	Background  color.NRGBA // zero value is transparent
}

// DefaultOptions returns a 512px three-quarter view.
func DefaultOptions() Options {
	return Options{
		Size:        512,
		Supersample: 2,
		Yaw:         30,
		Pitch:       25,
		Margin:      0.05,
	}
}

// camera is an orthographic view with right, up and toward-viewer axes.
type camera struct {
	cy, sy, cp, sp float32
}

func newCamera(yaw, pitch float32) camera {
	y := yaw * math32.Pi / 180
	p := pitch * math32.Pi / 180
	return camera{cy: math32.Cos(y), sy: math32.Sin(y), cp: math32.Cos(p), sp: math32.Sin(p)}
}

// view returns screen x, screen y and depth toward the viewer.
func (c camera) view(x, y, z float32) (float32, float32, float32) {
	x1 := c.cy*x - c.sy*y
	y1 := c.sy*x + c.cy*y
	return x1, c.sp*y1 + c.cp*z, -c.cp*y1 + c.sp*z
}

type face struct {
	pts   [3][2]float32
	depth float32
	col   color.NRGBA
}

// Render draws meshes with flat shading and back-face culling, painting
// far triangles first.
func Render(meshes []*tessellate.Mesh, opt Options) *image.RGBA {
	if opt.Size <= 0 {
		opt.Size = DefaultOptions().Size
	}
	if opt.Supersample < 1 {
		opt.Supersample = 1
	}
	size := opt.Size * opt.Supersample
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opt.Background), image.Point{}, draw.Src)

	cam := newCamera(opt.Yaw, opt.Pitch)
	var faces []face
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)

	for mi, m := range meshes {
		base := palette[mi%len(palette)]
		for t := 0; t < m.TriangleCount(); t++ {
			var f face
			for j := 0; j < 3; j++ {
				i := int(m.Indices[t*3+j]) * 3
				sx, sy, d := cam.view(m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2])
				f.pts[j] = [2]float32{sx, sy}
				f.depth += d
				minX, maxX = math32.Min(minX, sx), math32.Max(maxX, sx)
				minY, maxY = math32.Min(minY, sy), math32.Max(maxY, sy)
			}
			i := int(m.Indices[t*3]) * 3
			_, _, facing := cam.view(m.Normals[i], m.Normals[i+1], m.Normals[i+2])
			if facing <= 0 {
				continue
			}
			f.col = shade(base, 0.3+0.7*facing)
			faces = append(faces, f)
		}
	}
	if len(faces) > 0 {
		paint(canvas, faces, opt.Margin, minX, minY, maxX, maxY)
	}

	if opt.Supersample == 1 {
		return canvas
	}
	out := image.NewRGBA(image.Rect(0, 0, opt.Size, opt.Size))
	draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return out
}

// paint fits the screen-space bounds into the canvas and fills every face.
func paint(canvas *image.RGBA, faces []face, margin, minX, minY, maxX, maxY float32) {
	sort.SliceStable(faces, func(a, b int) bool { return faces[a].depth < faces[b].depth })

	size := float32(canvas.Bounds().Dx())
	extent := math32.Max(maxX-minX, maxY-minY)
	if extent == 0 {
		extent = 1
	}
	scale := size * (1 - 2*margin) / extent
	offX := size/2 - scale*(minX+maxX)/2
	offY := size/2 + scale*(minY+maxY)/2

	var z vector.Rasterizer
	for _, f := range faces {
		var px, py [3]float32
		for j, p := range f.pts {
			px[j] = offX + scale*p[0]
			py[j] = offY - scale*p[1]
		}
		// Rasterize only the triangle's bounding box.
		x0 := int(math32.Floor(math32.Min(px[0], math32.Min(px[1], px[2]))))
		y0 := int(math32.Floor(math32.Min(py[0], math32.Min(py[1], py[2]))))
		x1 := int(math32.Ceil(math32.Max(px[0], math32.Max(px[1], px[2]))))
		y1 := int(math32.Ceil(math32.Max(py[0], math32.Max(py[1], py[2]))))
		r := image.Rect(x0, y0, x1+1, y1+1)
		if r.Empty() {
			continue
		}
		z.Reset(r.Dx(), r.Dy())
		z.DrawOp = draw.Over
		z.MoveTo(px[0]-float32(x0), py[0]-float32(y0))
		z.LineTo(px[1]-float32(x0), py[1]-float32(y0))
		z.LineTo(px[2]-float32(x0), py[2]-float32(y0))
		z.ClosePath()
		z.Draw(canvas, r, image.NewUniform(f.col), image.Point{})
	}
}

func shade(c color.NRGBA, k float32) color.NRGBA {
	if k > 1 {
		k = 1
	}
	return color.NRGBA{
		R: uint8(float32(c.R) * k),
		G: uint8(float32(c.G) * k),
		B: uint8(float32(c.B) * k),
		A: c.A,
	}
}

// Save encodes img by the extension of path: .png or .webp.
func Save(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".webp" {
		return fmt.Errorf("%w %q", ErrUnknownImageFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	defer f.Close()

	if ext == ".webp" {
		err = nativewebp.Encode(f, img, nil)
	} else {
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return f.Close()
}
