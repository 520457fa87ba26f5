// Package export writes board snapshots to PDF.
package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"
	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/ecs/entity"
)

// Options controls the exported page.
type Options struct {
	Width, Height float64
	Background    color.NRGBA
	PlaneColor    color.NRGBA
	StrokeWidth   float64
	ParticleColor color.NRGBA
	// ParticleRadius of zero leaves particles out.
	ParticleRadius float64
}

// WritePDF draws every brush, plane and particle of w onto a single page the
// size of the board, in board units, and writes the document to out.
func WritePDF(out io.Writer, w *ecs.World, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("export: invalid page size %gx%g", opts.Width, opts.Height)
	}
	orientation := "P"
	if opts.Width > opts.Height {
		orientation = "L"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: opts.Width, Ht: opts.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	setFill(pdf, opts.Background)
	pdf.Rect(0, 0, opts.Width, opts.Height, "F")

	setDraw(pdf, opts.PlaneColor)
	pdf.SetLineWidth(2)
	ecs.ForEach(w, component.PlaneComponent, func(_ ecs.Entity, p component.Plane) {
		pdf.Line(p.A.X, p.A.Y, p.B.X, p.B.Y)
	})

	for i, b := range entity.Brushes(w) {
		f, ok := b.Frame()
		if !ok || f.Shape == nil {
			continue
		}
		if err := drawBrush(pdf, i, f, opts.StrokeWidth); err != nil {
			return fmt.Errorf("export: brush %s: %w", b.ID(), err)
		}
	}

	if opts.ParticleRadius > 0 {
		setFill(pdf, opts.ParticleColor)
		ecs.ForEach(w, component.ParticleComponent, func(e ecs.Entity, _ component.Particle) {
			tr, ok := ecs.Get(w, e, component.TransformComponent)
			if !ok {
				return
			}
			pdf.Circle(tr.X, tr.Y, opts.ParticleRadius, "F")
		})
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return pdf.Output(out)
}

func drawBrush(pdf *gofpdf.Fpdf, n int, f entity.Frame, strokeWidth float64) error {
	pdf.TransformBegin()
	defer pdf.TransformEnd()

	// ebiten rotates clockwise on screen, gofpdf counter-clockwise
	pdf.TransformRotate(-f.Rotation*180/math.Pi, f.X, f.Y)
	pdf.TransformScale(f.Scale*100, f.Scale*100, f.X, f.Y)

	if f.FillImage != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, f.FillImage); err != nil {
			return err
		}
		name := fmt.Sprintf("fill-%d", n)
		info := pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
		if info == nil {
			return pdf.Error()
		}
		clip := &clipPen{pdf: pdf, x: f.X, y: f.Y}
		f.Shape.Trace(clip)
		size := 2 * f.Shape.Metrics(nil).BoundingRadius
		iw, ih := info.Width(), info.Height()
		s := math.Max(size/iw, size/ih)
		pdf.ImageOptions(name, f.X-iw*s/2, f.Y-ih*s/2, iw*s, ih*s, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.ClipEnd()
	} else {
		setFill(pdf, f.Fill)
		f.Shape.Trace(&pdfPen{pdf: pdf, x: f.X, y: f.Y, style: "F"})
	}

	setDraw(pdf, f.Stroke)
	pdf.SetLineWidth(strokeWidth)
	f.Shape.Trace(&pdfPen{pdf: pdf, x: f.X, y: f.Y, style: "D"})
	return nil
}

// SaveFile writes the snapshot to path.
func SaveFile(path string, w *ecs.World, opts Options) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, w, opts); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

type pdfPen struct {
	pdf   *gofpdf.Fpdf
	x, y  float64
	style string
}

func (p *pdfPen) Circle(radius float64) {
	p.pdf.Circle(p.x, p.y, radius, p.style)
}

func (p *pdfPen) Rect(width, height float64) {
	p.pdf.Rect(p.x-width/2, p.y-height/2, width, height, p.style)
}

type clipPen struct {
	pdf  *gofpdf.Fpdf
	x, y float64
}

func (p *clipPen) Circle(radius float64) {
	p.pdf.ClipCircle(p.x, p.y, radius, false)
}

func (p *clipPen) Rect(width, height float64) {
	p.pdf.ClipRect(p.x-width/2, p.y-height/2, width, height, false)
}

func setFill(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setDraw(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
