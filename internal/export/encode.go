// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Format is an export output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// webpQuality matches the quality used for shared links; PNG stays
// lossless for downloads.
const webpQuality = 90

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Valid reports whether f is a supported output format.
func (f Format) Valid() bool {
	return f == FormatPNG || f == FormatWebP
}

// Encode serializes an image in the given format.
func Encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("export: png encode: %w", err)
		}
	case FormatWebP:
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetPhoto, webpQuality)
		if err != nil {
			return nil, fmt.Errorf("export: webp options: %w", err)
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("export: webp encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("export: unknown format %q", f)
	}
	return buf.Bytes(), nil
}
