package ai

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"

	"quote-drafter/internal/core"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	LogoWidth  = 240
	LogoHeight = 90
)

func invalidImage(format string, args ...any) error {
	return &core.ValidationError{Entity: "logo", Errors: []core.FieldError{{
		Field: "image", Kind: core.KindInvalidType, Message: fmt.Sprintf(format, args...),
	}}}
}

// LogoOptimizer fits logos into a fixed box without distorting them.
type LogoOptimizer struct {
	Width, Height int
}

func NewLogoOptimizer() *LogoOptimizer {
	return &LogoOptimizer{Width: LogoWidth, Height: LogoHeight}
}

// Optimize scales the image in dataURL to fit Width×Height and centres it on
// a canvas of exactly that size. JPEG input stays JPEG on white; everything
// else becomes PNG on a transparent background.
func (o *LogoOptimizer) Optimize(ctx context.Context, dataURL string) (string, error) {
	in, err := core.ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}
	src, err := decodeImage(in)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := o.render(src, in.MIME == "image/jpeg")
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func decodeImage(in core.DataURL) (image.Image, error) {
	r := bytes.NewReader(in.Data)
	var (
		img image.Image
		err error
	)
	switch in.MIME {
	case "image/png":
		img, err = png.Decode(r)
	case "image/jpeg":
		img, err = jpeg.Decode(r)
	case "image/gif":
		img, err = gif.Decode(r)
	case "image/webp":
		img, err = webp.Decode(r)
	default:
		return nil, invalidImage("unsupported image type %q", in.MIME)
	}
	if err != nil {
		return nil, invalidImage("cannot decode %s: %v", in.MIME, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, invalidImage("image is empty")
	}
	return img, nil
}

// fitRect returns the centred rectangle of a w×h image scaled to fit the box.
func fitRect(w, h, boxW, boxH int) image.Rectangle {
	sw, sh := boxW, h*boxW/w
	if sh > boxH {
		sw, sh = w*boxH/h, boxH
	}
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	x := (boxW - sw) / 2
	y := (boxH - sh) / 2
	return image.Rect(x, y, x+sw, y+sh)
}

func (o *LogoOptimizer) render(src image.Image, asJPEG bool) (core.DataURL, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	if asJPEG {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}
	b := src.Bounds()
	draw.CatmullRom.Scale(canvas, fitRect(b.Dx(), b.Dy(), o.Width, o.Height), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if asJPEG {
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
			return core.DataURL{}, fmt.Errorf("encode jpeg: %w", err)
		}
		return core.DataURL{MIME: "image/jpeg", Data: buf.Bytes()}, nil
	}
	if err := png.Encode(&buf, canvas); err != nil {
		return core.DataURL{}, fmt.Errorf("encode png: %w", err)
	}
	return core.DataURL{MIME: "image/png", Data: buf.Bytes()}, nil
}
