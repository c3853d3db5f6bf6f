package gglife

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LabelSize is the font size in points used by DrawLabel.
const LabelSize = 12

var (
	labelFaceOnce sync.Once
	labelFace     font.Face
	labelFaceErr  error
)

// loadLabelFace parses the embedded Go Regular font once.
func loadLabelFace() (font.Face, error) {
	labelFaceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			labelFaceErr = fmt.Errorf("gglife: parse label font: %w", err)
			return
		}
		labelFace, labelFaceErr = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    LabelSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return labelFace, labelFaceErr
}

// DrawLabel draws s with its baseline origin at (x, y) in color c. It is used
// to stamp the generation number onto exported snapshots.
func (p *Pixmap) DrawLabel(x, y int, s string, c RGBA) error {
	face, err := loadLabelFace()
	if err != nil {
		return err
	}
	// Draw straight into the pixmap memory.
	dst := &image.RGBA{
		Pix:    p.data,
		Stride: p.width * 4,
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.NRGBA()),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
	return nil
}

// LabelWidth returns the advance width of s in pixels.
func LabelWidth(s string) (int, error) {
	face, err := loadLabelFace()
	if err != nil {
		return 0, err
	}
	return font.MeasureString(face, s).Ceil(), nil
}
