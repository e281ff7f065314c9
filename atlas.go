package og

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/gogpu/gpucontext"

	"github.com/anhaabaete/openglobus/internal/binpack"
	"github.com/anhaabaete/openglobus/internal/canvas"
)

// Atlas errors.
var (
	// ErrAtlasOverflow is returned when no free region can hold an image.
	ErrAtlasOverflow = errors.New("og: texture atlas is full")

	// ErrAtlasClosed is returned when operating on a closed atlas.
	ErrAtlasClosed = errors.New("og: texture atlas is closed")

	// ErrNilImage is returned when adding a nil image.
	ErrNilImage = errors.New("og: image is nil")

	// ErrInvalidSize is returned when a slot dimension is not positive.
	ErrInvalidSize = errors.New("og: image slot size must be positive")

	// ErrNilTextureCreator is returned when the first texture upload is
	// requested without a creator.
	ErrNilTextureCreator = errors.New("og: texture creator is nil")
)

// Default atlas settings.
const (
	// DefaultAtlasSize is the default canvas dimension (1024x1024).
	DefaultAtlasSize = 1024

	// DefaultAtlasBorder is the padding in pixels added on each side of
	// a packed image.
	DefaultAtlasBorder = 4
)

// TexCoords holds the four normalized corner texture coordinates of a
// packed image as (u, v) pairs in the order top-left, bottom-left,
// top-right, bottom-right — the corners of the image's 2-triangle quad.
type TexCoords [8]float32

// AtlasImage is one image managed by a TextureAtlas together with its
// placement-derived texture coordinates.
type AtlasImage struct {
	img           image.Image
	width, height int // slot size on the canvas
	seq           int // insertion sequence, stable sort tiebreak

	rect      binpack.Rect
	texCoords TexCoords
}

// Width returns the image's slot width on the canvas.
func (ai *AtlasImage) Width() int { return ai.width }

// Height returns the image's slot height on the canvas.
func (ai *AtlasImage) Height() int { return ai.height }

// TexCoords returns the image's normalized corner texture coordinates.
// They change whenever the atlas repacks.
func (ai *AtlasImage) TexCoords() TexCoords { return ai.texCoords }

// Rect returns the image's padded placement rectangle on the canvas.
func (ai *AtlasImage) Rect() (x, y, width, height int) {
	return ai.rect.X, ai.rect.Y, ai.rect.Width, ai.rect.Height
}

// TextureAtlasConfig holds configuration for creating a TextureAtlas.
type TextureAtlasConfig struct {
	// Width is the canvas width in pixels. Defaults to DefaultAtlasSize.
	Width int

	// Height is the canvas height in pixels. Defaults to DefaultAtlasSize.
	Height int

	// Border is the padding on each side of a packed image.
	// Defaults to DefaultAtlasBorder; use a negative value for zero.
	Border int

	// Fit is the bin-packing placement tolerance in pixels.
	Fit int
}

// textureDestroyer is the interface for destroying host GPU textures.
type textureDestroyer interface {
	Destroy()
}

// TextureAtlas packs a growing set of images into one square canvas and
// derives a GPU texture from it. Every append triggers a full repack:
// the image set is re-sorted by size, the packing tree is rebuilt from
// scratch and the canvas is re-rasterized. Sorting removes insertion-
// order dependence, so the packing is deterministic and reproducible.
// The O(n) cost per insertion is acceptable because atlases are built
// during load, not per-frame.
//
// TextureAtlas is owned by its scene and is not safe for concurrent use.
type TextureAtlas struct {
	width  int
	height int
	border int

	images []*AtlasImage
	seq    int

	tree   *binpack.Tree
	canvas *canvas.Canvas

	texture any // host GPU texture, lazily created
	dirty   bool
	closed  bool
}

// NewTextureAtlas creates an empty atlas with the given configuration.
func NewTextureAtlas(cfg TextureAtlasConfig) *TextureAtlas {
	width := cfg.Width
	if width <= 0 {
		width = DefaultAtlasSize
	}
	height := cfg.Height
	if height <= 0 {
		height = DefaultAtlasSize
	}
	border := cfg.Border
	if border == 0 {
		border = DefaultAtlasBorder
	} else if border < 0 {
		border = 0
	}

	return &TextureAtlas{
		width:  width,
		height: height,
		border: border,
		tree:   binpack.New(width, height, cfg.Fit),
		canvas: canvas.New(width, height),
	}
}

// Width returns the canvas width in pixels.
func (a *TextureAtlas) Width() int { return a.width }

// Height returns the canvas height in pixels.
func (a *TextureAtlas) Height() int { return a.height }

// Len returns the number of packed images.
func (a *TextureAtlas) Len() int { return len(a.images) }

// AddImage packs the image at its natural size and returns its atlas
// entry with texture coordinates filled in.
//
// On overflow the atlas removes the rejected image, restores the
// previous packing and returns ErrAtlasOverflow; existing entries stay
// valid (their coordinates may move, as with any repack).
func (a *TextureAtlas) AddImage(img image.Image) (*AtlasImage, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	return a.AddImageSized(img, b.Dx(), b.Dy())
}

// AddImageSized packs the image into a width x height slot, rescaling
// it on the canvas when the source size differs.
func (a *TextureAtlas) AddImageSized(img image.Image, width, height int) (*AtlasImage, error) {
	if a.closed {
		return nil, ErrAtlasClosed
	}
	if img == nil {
		return nil, ErrNilImage
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: slot is %dx%d", ErrInvalidSize, width, height)
	}

	entry := &AtlasImage{img: img, width: width, height: height, seq: a.seq}
	a.seq++
	a.images = append(a.images, entry)

	if err := a.repack(); err != nil {
		// Drop the rejected image and restore the previous packing.
		a.images = a.images[:len(a.images)-1]
		if rerr := a.repack(); rerr != nil {
			// The previous set packed before and the algorithm is
			// deterministic, so this cannot fail.
			Logger().Warn("og: atlas restore repack failed", "error", rerr)
		}
		return nil, err
	}

	a.dirty = true
	Logger().Debug("og: atlas image packed",
		"count", len(a.images), "slot_w", width, "slot_h", height)
	return entry, nil
}

// repack re-sorts the whole image set by ascending width then height,
// rebuilds the packing tree from an empty root, clears the canvas and
// re-inserts and re-rasterizes every image in sorted order.
func (a *TextureAtlas) repack() error {
	sorted := make([]*AtlasImage, len(a.images))
	copy(sorted, a.images)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].width != sorted[j].width {
			return sorted[i].width < sorted[j].width
		}
		if sorted[i].height != sorted[j].height {
			return sorted[i].height < sorted[j].height
		}
		return sorted[i].seq < sorted[j].seq
	})

	a.tree.Reset()
	a.canvas.Clear()

	for _, entry := range sorted {
		padded := 2 * a.border
		rect, ok := a.tree.Insert(entry.width+padded, entry.height+padded)
		if !ok {
			return fmt.Errorf("%w: no room for %dx%d",
				ErrAtlasOverflow, entry.width, entry.height)
		}
		entry.rect = rect
		entry.texCoords = a.makeTexCoords(rect, entry.width, entry.height)
		a.canvas.DrawImageScaled(entry.img,
			rect.X+a.border, rect.Y+a.border, entry.width, entry.height)
	}

	return nil
}

// makeTexCoords derives the four corner texture coordinates from a
// padded placement rectangle: the image rectangle grown by half the
// border on each side, normalized by the canvas dimensions. The
// half-border gutter keeps bilinear sampling from bleeding into
// neighboring images.
func (a *TextureAtlas) makeTexCoords(rect binpack.Rect, width, height int) TexCoords {
	half := float32(a.border) / 2
	w := float32(a.width)
	h := float32(a.height)

	u0 := (float32(rect.X) + half) / w
	v0 := (float32(rect.Y) + half) / h
	u1 := (float32(rect.X) + half + float32(width+a.border)) / w
	v1 := (float32(rect.Y) + half + float32(height+a.border)) / h

	return TexCoords{
		u0, v0, // top-left
		u0, v1, // bottom-left
		u1, v0, // top-right
		u1, v1, // bottom-right
	}
}

// Canvas returns the raw RGBA pixel data of the rasterized canvas.
func (a *TextureAtlas) Canvas() []byte {
	return a.canvas.Data()
}

// Texture returns the GPU texture for the canvas, creating it through
// the host's creator on first use and re-uploading whenever the atlas
// repacked since the last call. The returned value implements
// gpucontext.Texture.
func (a *TextureAtlas) Texture(creator gpucontext.TextureCreator) (any, error) {
	if a.closed {
		return nil, ErrAtlasClosed
	}
	if !a.dirty && a.texture != nil {
		return a.texture, nil
	}

	data := a.canvas.Data()

	if a.texture == nil {
		if creator == nil {
			return nil, ErrNilTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(a.width, a.height, data)
		if err != nil {
			return nil, fmt.Errorf("og: atlas texture creation: %w", err)
		}
		a.texture = tex
		a.dirty = false
		return a.texture, nil
	}

	if updater, ok := a.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return nil, fmt.Errorf("og: atlas texture update: %w", err)
		}
		a.dirty = false
		return a.texture, nil
	}

	// The host texture cannot update in place; recreate it.
	if creator == nil {
		return nil, ErrNilTextureCreator
	}
	if destroyer, ok := a.texture.(textureDestroyer); ok {
		destroyer.Destroy()
	}
	tex, err := creator.NewTextureFromRGBA(a.width, a.height, data)
	if err != nil {
		a.texture = nil
		return nil, fmt.Errorf("og: atlas texture recreation: %w", err)
	}
	a.texture = tex
	a.dirty = false
	return a.texture, nil
}

// Close destroys the GPU texture and releases the atlas.
// Close is idempotent; a closed atlas rejects further operations.
func (a *TextureAtlas) Close() {
	if a.closed {
		return
	}
	if a.texture != nil {
		if destroyer, ok := a.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		a.texture = nil
	}
	a.images = nil
	a.closed = true
}
