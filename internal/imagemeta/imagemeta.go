// Package imagemeta extracts pixel geometry from encoded image bytes.
package imagemeta

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info describes the dimensions and pixel format of an encoded image.
type Info struct {
	Width     int
	Height    int
	PixelType string
}

// Identify reads the header of an encoded image and returns its dimensions
// and pixel format without decoding the full pixel data.
func Identify(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("failed to identify image: %w", err)
	}

	return Info{
		Width:     cfg.Width,
		Height:    cfg.Height,
		PixelType: pixelType(cfg.ColorModel, format),
	}, nil
}

// pixelType names the color model the decoder reported for the image header.
func pixelType(m color.Model, format string) string {
	switch m {
	case color.RGBAModel:
		return "RGBA32"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBAModel:
		return "NRGBA32"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.GrayModel:
		return "Gray8"
	case color.Gray16Model:
		return "Gray16"
	case color.YCbCrModel:
		return "YCbCr24"
	case color.NYCbCrAModel:
		return "NYCbCrA32"
	case color.CMYKModel:
		return "CMYK32"
	}
	if _, ok := m.(color.Palette); ok {
		return "Paletted8"
	}
	return format
}
