// Package canvas provides the fixed-size 2D rasterizing surface texture
// atlases draw into before upload.
package canvas

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Canvas is a fixed-size RGBA pixel surface.
//
// Canvas is owned by its atlas and is not safe for concurrent use.
type Canvas struct {
	rgba   *image.RGBA
	width  int
	height int
}

// New creates a transparent canvas of the given size.
func New(width, height int) *Canvas {
	return &Canvas{
		rgba:   image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// DrawImage blits the image at (x, y) without scaling.
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	b := img.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	xdraw.Draw(c.rgba, dst, img, b.Min, xdraw.Over)
}

// DrawImageScaled draws the image into the width x height slot at
// (x, y), rescaling with bilinear interpolation when the source size
// differs from the slot.
func (c *Canvas) DrawImageScaled(img image.Image, x, y, width, height int) {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		c.DrawImage(img, x, y)
		return
	}
	dst := image.Rect(x, y, x+width, y+height)
	xdraw.ApproxBiLinear.Scale(c.rgba, dst, img, b, xdraw.Over, nil)
}

// Clear resets every pixel to transparent black.
func (c *Canvas) Clear() {
	clear(c.rgba.Pix)
}

// Data returns the raw RGBA pixel data, row-major, 4 bytes per pixel.
// The slice aliases the canvas storage.
func (c *Canvas) Data() []byte {
	return c.rgba.Pix
}

// RGBA returns the backing image. The image aliases the canvas storage.
func (c *Canvas) RGBA() *image.RGBA {
	return c.rgba
}
