// Package clue renders the clue images handed out after each solved
// question: a background map with one secret digit stamped at a random
// position and rotation.
package clue

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var goRegular = mustParseFont(goregular.TTF)

func mustParseFont(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("parsing embedded font: %v", err))
	}
	return f
}

var digitColor = color.RGBA{R: 255, A: 255}

const (
	placeholderFill  = "#e0e0e0"
	placeholderFont  = 20.0
	placeholderInset = 50.0

	// glyphPad covers antialiasing spill outside the glyph's bounding box.
	glyphPad = 2.0
)

// Options configures a Compositor. Zero fields take the defaults of an
// 800x600 canvas, a 50px margin and a 48pt digit.
type Options struct {
	Digits      []string
	Width       int
	Height      int
	Margin      int
	FontSize    float64
	MaxMapIndex int
	Backgrounds Backgrounds
	Logger      *slog.Logger
	// Rand is used for placement. Nil uses the runtime's concurrent-safe
	// generator; a non-nil source is serialized internally.
	Rand *rand.Rand
}

// Clue is one rendered image plus the placement used to draw it.
type Clue struct {
	PNG         []byte
	Digit       string
	MapIndex    int
	X, Y        float64
	Angle       float64
	Radius      float64
	Placeholder bool
}

// Compositor renders clues. It holds no per-request state and is safe
// for concurrent use.
type Compositor struct {
	digits      []string
	width       int
	height      int
	margin      float64
	fontSize    float64
	maxMapIndex int
	backgrounds Backgrounds
	logger      *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func New(opts Options) (*Compositor, error) {
	if len(opts.Digits) == 0 {
		return nil, errors.New("digit table is empty")
	}
	c := &Compositor{
		digits:      append([]string(nil), opts.Digits...),
		width:       orInt(opts.Width, 800),
		height:      orInt(opts.Height, 600),
		margin:      float64(opts.Margin),
		fontSize:    opts.FontSize,
		maxMapIndex: orInt(opts.MaxMapIndex, 6),
		backgrounds: opts.Backgrounds,
		logger:      opts.Logger,
		rnd:         opts.Rand,
	}
	if opts.Margin == 0 {
		c.margin = 50
	}
	if c.fontSize <= 0 {
		c.fontSize = 48
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	// Every digit must fit inside the margin at any rotation.
	for _, d := range c.digits {
		if d == "" {
			return nil, errors.New("digit table has an empty entry")
		}
		r := c.radius(d)
		if 2*(c.margin+r) >= float64(c.width) || 2*(c.margin+r) >= float64(c.height) {
			return nil, fmt.Errorf("digit %q does not fit a %dx%d canvas with margin %.0f", d, c.width, c.height, c.margin)
		}
	}
	return c, nil
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Digit returns the secret digit for a 0-based question index. Indexes
// past the table reuse its last entry.
func (c *Compositor) Digit(index int) string {
	return c.digits[clamp(index, 0, len(c.digits)-1)]
}

// MapIndex returns the 1-based background map for a 0-based question
// index. Later questions reuse the last map.
func (c *Compositor) MapIndex(index int) int {
	return clamp(index+1, 1, c.maxMapIndex)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func (c *Compositor) face(size float64) font.Face {
	return truetype.NewFace(goRegular, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

// radius is the half-diagonal of the digit's glyph box, i.e. how far the
// glyph can reach from its center at any rotation.
func (c *Compositor) radius(digit string) float64 {
	face := c.face(c.fontSize)
	defer face.Close()
	b, _ := font.BoundString(face, digit)
	w := float64(b.Max.X-b.Min.X) / 64
	h := float64(b.Max.Y-b.Min.Y) / 64
	return math.Hypot(w, h)/2 + glyphPad
}

func (c *Compositor) uniform() float64 {
	if c.rnd == nil {
		return rand.Float64()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Float64()
}

// Render draws the clue for a 0-based question index. A missing
// background is replaced by a labelled placeholder; only encoding
// failures are returned.
func (c *Compositor) Render(index int) (*Clue, error) {
	digit := c.Digit(index)
	mapIndex := c.MapIndex(index)

	dc := gg.NewContext(c.width, c.height)
	placeholder := !c.drawBackground(dc, mapIndex)

	r := c.radius(digit)
	lo := c.margin + r
	out := &Clue{
		Digit:       digit,
		MapIndex:    mapIndex,
		X:           lo + c.uniform()*(float64(c.width)-2*lo),
		Y:           lo + c.uniform()*(float64(c.height)-2*lo),
		Angle:       c.uniform() * 2 * math.Pi,
		Radius:      r,
		Placeholder: placeholder,
	}
	c.stamp(dc, out)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding clue png: %w", err)
	}
	out.PNG = buf.Bytes()
	return out, nil
}

func (c *Compositor) drawBackground(dc *gg.Context, mapIndex int) bool {
	if c.backgrounds != nil {
		img, err := c.backgrounds.Background(mapIndex)
		if err == nil {
			b := img.Bounds()
			dc.Push()
			dc.Scale(float64(c.width)/float64(b.Dx()), float64(c.height)/float64(b.Dy()))
			dc.DrawImage(img, -b.Min.X, -b.Min.Y)
			dc.Pop()
			return true
		}
		c.logger.Warn("clue background missing, using placeholder", "map", mapIndex, "error", err)
	}

	name := fmt.Sprintf("map%d", mapIndex)
	if c.backgrounds != nil {
		name = c.backgrounds.Name(mapIndex)
	}
	dc.SetHexColor(placeholderFill)
	dc.Clear()
	face := c.face(placeholderFont)
	defer face.Close()
	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)
	dc.DrawString("MAP IMAGE MISSING: "+name, placeholderInset, placeholderInset)
	return false
}

// stamp draws the digit with its glyph box centered on (X, Y), rotated
// about that point.
func (c *Compositor) stamp(dc *gg.Context, cl *Clue) {
	face := c.face(c.fontSize)
	defer face.Close()
	b, _ := font.BoundString(face, cl.Digit)
	cx := float64(b.Min.X+b.Max.X) / 128
	cy := float64(b.Min.Y+b.Max.Y) / 128

	dc.Push()
	dc.SetFontFace(face)
	dc.SetColor(digitColor)
	dc.RotateAbout(cl.Angle, cl.X, cl.Y)
	dc.DrawString(cl.Digit, cl.X-cx, cl.Y-cy)
	dc.Pop()
}
