// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"cardstudio/internal/card"
	"cardstudio/internal/markdown"
	"cardstudio/internal/render"
	"cardstudio/internal/theme"
)

// Canvas geometry shared by all layouts.
const (
	pad     = 80.0
	pillPad = 28.0
	pillH   = 64.0
)

// fallbackBG fills cards whose background could not be loaded.
const fallbackBG = "#111111"

// Rasterizer draws one card as a pixel image at design resolution. It
// reproduces the stage's layout rules closely enough that an export
// matches what the user saw.
type Rasterizer struct {
	bold    *opentype.Font
	regular *opentype.Font
}

// NewRasterizer parses the embedded Go fonts once.
func NewRasterizer() (*Rasterizer, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("export: parse bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("export: parse regular font: %w", err)
	}
	return &Rasterizer{bold: bold, regular: regular}, nil
}

func (r *Rasterizer) face(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// Render composites one card: background with filters, overlay wash,
// then the layout's text. bg may be nil, in which case the flat
// fallback fills the canvas.
func (r *Rasterizer) Render(c card.Card, showPill bool, th *theme.Theme, bg image.Image) (image.Image, error) {
	dc := gg.NewContext(render.CardWidth, render.CardHeight)

	if bg != nil {
		dc.DrawImage(applyFilters(bg, c), 0, 0)
	} else {
		dc.SetHexColor(fallbackBG)
		dc.Clear()
	}

	// Overlay wash between the photo and the text.
	or, og, ob, alpha := render.OverlayColorFor(c, th)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	dc.SetRGBA255(int(or), int(og), int(ob), int(alpha*255))
	dc.DrawRectangle(0, 0, render.CardWidth, render.CardHeight)
	dc.Fill()

	if c.ID == card.VariantD {
		return dc.Image(), r.drawCaption(dc, c, th)
	}
	return dc.Image(), r.drawLayout(dc, c, showPill, th)
}

// applyFilters crops the photo to cover the canvas and applies the
// card's adjustment block. Grayscale maps to a saturation pull so
// partial values blend instead of snapping.
func applyFilters(bg image.Image, c card.Card) image.Image {
	img := imaging.Fill(bg, render.CardWidth, render.CardHeight, imaging.Center, imaging.Lanczos)
	if c.Blur > 0 {
		img = imaging.Blur(img, c.Blur)
	}
	if c.Contrast != 100 {
		img = imaging.AdjustContrast(img, c.Contrast-100)
	}
	if c.Brightness != 100 {
		img = imaging.AdjustBrightness(img, c.Brightness-100)
	}
	if c.Grayscale > 0 {
		img = imaging.AdjustSaturation(img, -c.Grayscale)
	}
	return img
}

// drawLayout renders the title/subtitle/pill for the A/B/C layouts.
func (r *Rasterizer) drawLayout(dc *gg.Context, c card.Card, showPill bool, th *theme.Theme) error {
	fonts := render.FontsFor(c.Layout)
	title := strings.TrimSpace(c.EffectiveTitle())
	subtitle := strings.TrimSpace(c.EffectiveSubtitle())
	if c.Layout == card.LayoutChatGPTricks {
		subtitle = ""
	}

	titleFace, err := r.face(r.bold, fonts.Title.Size)
	if err != nil {
		return err
	}
	defer titleFace.Close()

	centered := c.Layout == card.LayoutCentered || c.Layout == card.LayoutChatGPTricks
	width := render.CardWidth - 2*pad

	if showPill {
		if err := r.drawPill(dc, c, th, centered); err != nil {
			return err
		}
	}

	dc.SetHexColor(cssHex(resolveHex(c, c.TitleColor, th)))
	dc.SetFontFace(titleFace)
	if centered {
		dc.DrawStringWrapped(title, render.CardWidth/2, render.CardHeight/2, 0.5, 0.5,
			width, fonts.Title.LineHeight, gg.AlignCenter)
	} else {
		bottom := render.CardHeight - pad
		if subtitle != "" {
			bottom -= 220
		}
		dc.DrawStringWrapped(title, pad, bottom, 0, 1,
			width, fonts.Title.LineHeight, gg.AlignLeft)
	}

	if subtitle != "" && fonts.Subtitle.Size > 0 {
		subFace, err := r.face(r.regular, fonts.Subtitle.Size)
		if err != nil {
			return err
		}
		defer subFace.Close()
		dc.SetHexColor(cssHex(resolveHex(c, c.SubtitleColor, th)))
		dc.SetFontFace(subFace)
		if centered {
			dc.DrawStringWrapped(subtitle, render.CardWidth/2, render.CardHeight/2+260, 0.5, 0,
				width, fonts.Subtitle.LineHeight, gg.AlignCenter)
		} else {
			dc.DrawStringWrapped(subtitle, pad, render.CardHeight-pad, 0, 1,
				width, fonts.Subtitle.LineHeight, gg.AlignLeft)
		}
	}

	return nil
}

// drawPill renders the tag pill at the layout's anchor.
func (r *Rasterizer) drawPill(dc *gg.Context, c card.Card, th *theme.Theme, centered bool) error {
	tag := strings.TrimSpace(c.EffectiveTag())
	if tag == "" {
		return nil
	}

	face, err := r.face(r.bold, 30)
	if err != nil {
		return err
	}
	defer face.Close()
	dc.SetFontFace(face)

	w, _ := dc.MeasureString(tag)
	pw := w + 2*pillPad
	x := pad
	if centered {
		x = (render.CardWidth - pw) / 2
	}
	y := pad + 40

	dc.SetHexColor(cssHex(resolveHex(c, c.PillBgColor, th)))
	dc.DrawRoundedRectangle(x, y, pw, pillH, pillH/2)
	dc.Fill()

	dc.SetHexColor(cssHex(resolveHex(c, c.PillTextColor, th)))
	dc.DrawStringAnchored(tag, x+pw/2, y+pillH/2, 0.5, 0.35)
	return nil
}

// drawCaption renders the caption card: paragraphs on a quiet ground.
func (r *Rasterizer) drawCaption(dc *gg.Context, c card.Card, th *theme.Theme) error {
	caption := markdown.Strip(strings.TrimSpace(c.Caption))
	if caption == "" {
		caption = c.DefaultSubtitle
	}

	face, err := r.face(r.regular, 40)
	if err != nil {
		return err
	}
	defer face.Close()

	dc.SetHexColor(cssHex(resolveHex(c, c.SubtitleColor, th)))
	dc.SetFontFace(face)
	dc.DrawStringWrapped(caption, pad, pad+60, 0, 0,
		render.CardWidth-2*pad, 1.5, gg.AlignLeft)
	return nil
}

// resolveHex maps a symbolic color to its hex value the same way the
// live projection does.
func resolveHex(c card.Card, name card.ColorName, th *theme.Theme) string {
	switch name {
	case card.ColorWhite:
		return "#FFFFFF"
	case card.ColorBlack:
		return "#000000"
	case card.ColorBrand:
		if c.Layout == card.LayoutChatGPTricks {
			return "#FFFFFF"
		}
		return th.Brand()
	}
	return string(name)
}

// cssHex normalizes short-form hex so gg parses it consistently.
func cssHex(h string) string {
	h = strings.TrimPrefix(h, "#")
	if r, g, b, err := theme.ParseHex(h); err == nil {
		return fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
	return "#FFFFFF"
}
