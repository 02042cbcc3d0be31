package appwindow

import (
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// appIconSVG is this application's icon, authored directly as SVG rather
// than embedded from a binary asset: a rounded terminal glyph, a caret and
// cursor bar over a dark panel. Rendered at several sizes via oksvg and
// rasterx, the same pipeline the teacher's src/assets/icon.go uses for its
// embedded artwork.
const appIconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 256 256">
  <rect x="8" y="8" width="240" height="240" rx="36" fill="#1b1f27"/>
  <rect x="8" y="8" width="240" height="240" rx="36" fill="none" stroke="#4c8bf5" stroke-width="6"/>
  <path d="M56 92 L104 128 L56 164" fill="none" stroke="#7fe0a0" stroke-width="18" stroke-linecap="round" stroke-linejoin="round"/>
  <rect x="124" y="152" width="80" height="18" rx="6" fill="#e6e6e6"/>
</svg>`

var iconSizes = []int{16, 32, 48, 64, 128, 256}

// LoadIconSizes renders appIconSVG to RGBA images at each of iconSizes,
// suitable for glfw.Window.SetIcon.
func LoadIconSizes() []image.Image {
	icons := make([]image.Image, 0, len(iconSizes))
	for _, size := range iconSizes {
		if img := renderSVGToSize(appIconSVG, size); img != nil {
			icons = append(icons, img)
		}
	}
	return icons
}

func renderSVGToSize(svgData string, size int) image.Image {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svgData))
	if err != nil {
		return nil
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	rasterizer := rasterx.NewDasher(size, size, scanner)
	icon.Draw(rasterizer, 1.0)
	return rgba
}
