package renderer

import (
	"github.com/ivlev/lyric2video/internal/canvas"
	"github.com/ivlev/lyric2video/internal/palette"
)

// DrawBackground paints the chapter gradient of f, crossfading into the
// next chapter. Without a cache it falls back to a flat fill.
func (p *Player) DrawBackground(dst canvas.Surface, f Frame, bg *canvas.BackgroundCache) {
	w, h := dst.Size()
	from := p.tl.Look(f.Chapter)

	if bg == nil {
		dst.Save()
		dst.SetAlpha(1)
		dst.SetFillColor(palette.Parse(from.Top))
		dst.BeginPath()
		dst.Rect(0, 0, float64(w), float64(h))
		dst.Fill()
		dst.Restore()
		return
	}

	if img := bg.Get(from.Title, w, h, palette.Parse(from.Top), palette.Parse(from.Bottom)); img != nil {
		dst.DrawImage(img, 0, 0)
	}
	if f.NextChapter != f.Chapter && f.BackgroundBlend > 0 {
		to := p.tl.Look(f.NextChapter)
		if img := bg.Get(to.Title, w, h, palette.Parse(to.Top), palette.Parse(to.Bottom)); img != nil {
			dst.Save()
			dst.SetAlpha(f.BackgroundBlend)
			dst.DrawImage(img, 0, 0)
			dst.Restore()
		}
	}
}

// DrawChunks draws the text of f under its camera transform. The surface
// has no shear, so skew is drawn as a slight rotation.
func (p *Player) DrawChunks(dst canvas.Surface, f Frame) {
	w, h := dst.Size()
	cx, cy := float64(w)/2, float64(h)/2
	zoom := f.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	dst.Save()
	dst.Translate(cx+f.CameraX, cy+f.CameraY)
	dst.Scale(zoom, zoom)
	dst.Translate(-cx, -cy)

	for _, c := range f.Chunks {
		dst.Save()
		dst.Translate(c.X, c.Y)
		if c.Skew != 0 {
			dst.Rotate(c.Skew * 0.5)
		}
		dst.Scale(c.Scale*c.ScaleX, c.Scale*c.ScaleY)
		dst.SetAlpha(c.Alpha)
		dst.SetFillColor(palette.Parse(c.Color))
		width := canvas.MeasureText(c.Text, c.FontSize)
		dst.FillText(c.Text, -width/2, c.FontSize*0.35, c.FontSize)
		dst.Restore()
	}
	dst.Restore()
}

// Draw renders background and text of f
func (p *Player) Draw(dst canvas.Surface, f Frame, bg *canvas.BackgroundCache) {
	p.DrawBackground(dst, f, bg)
	p.DrawChunks(dst, f)
}
