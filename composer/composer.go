// Package composer is the frame composer (spec.md §4.10): it owns every GL
// resource and paints one frame from a *rowcache.Cache and *snapshot.Snapshot
// — backgrounds, shaped text, the cursor shape variants, and the scrollbar.
// It never touches go-headless-term, the PTY, or any session state; its
// entire input is already-resolved color.RGBA and shaped glyph positions.
//
// Grounded on render/render.go (teacher): drawRect/drawChar/the quad and
// text shader programs/orthoMatrix/createProgram/compileShader are kept
// nearly as-is, since they are GL plumbing rather than domain logic.
// renderGridAt's single cursor-fill-and-redraw-char block is generalized
// into the four cursor shape variants spec.md §4.10 names.
package composer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/simpleterm/simpleterm/interaction"
	"github.com/simpleterm/simpleterm/rowcache"
	"github.com/simpleterm/simpleterm/snapshot"
)

const atlasSize = 512

// glyphInfo is one baked glyph's location in the atlas texture (normalized)
// and its pixel size, mirroring the teacher's Glyph.
type glyphInfo struct {
	X, Y, Width, Height     float32
	PixelWidth, PixelHeight int
}

// Composer owns the GL resources a frame needs to paint.
type Composer struct {
	CellWidth, CellHeight float32

	glyphs    map[rune]glyphInfo
	fontAtlas uint32

	quadProgram  uint32
	quadVAO      uint32
	quadVBO      uint32
	quadColorLoc int32
	quadProjLoc  int32

	textProgram  uint32
	textVAO      uint32
	textVBO      uint32
	textColorLoc int32
	textProjLoc  int32
	textTexLoc   int32
}

// New builds a Composer around face, an already-resolved font face shared
// with the rowcache.Shaper that positions glyphs (so shaping and rasterized
// pixels agree). The caller must hold the GL context current.
func New(face font.Face) (*Composer, error) {
	width, height := CellMetrics(face)
	c := &Composer{
		CellWidth:  width,
		CellHeight: height,
		glyphs:     make(map[rune]glyphInfo),
	}
	if err := c.initGL(); err != nil {
		return nil, err
	}
	if err := c.buildAtlas(face); err != nil {
		return nil, err
	}
	return c, nil
}

// buildAtlas rasterizes the printable ASCII, extended Latin-1, box-drawing,
// and block-element ranges spec.md's grid content actually uses into one
// RGBA image, then uploads its alpha channel as a single-channel texture —
// the same bake-once-sample-every-frame technique as loadFontData, trimmed
// of the Nerd Font icon ranges the teacher bakes for its own chrome glyphs
// (composer paints only terminal cell contents, never UI icons).
func (c *Composer) buildAtlas(face font.Face) error {
	atlas := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))
	draw.Draw(atlas, atlas.Bounds(), image.Transparent, image.Point{}, draw.Src)

	drawer := &font.Drawer{Dst: atlas, Src: image.White, Face: face}
	metrics := face.Metrics()

	charRanges := []struct{ start, end rune }{
		{32, 126},        // Printable ASCII
		{160, 255},       // Extended Latin-1
		{0x2500, 0x257F}, // Box Drawing
		{0x2580, 0x259F}, // Block Elements
		{0x25A0, 0x25FF}, // Geometric Shapes
	}

	charWidth := int(c.CellWidth)
	charHeight := int(c.CellHeight)
	x, y := 0, metrics.Ascent.Ceil()

	for _, cr := range charRanges {
		for ch := cr.start; ch <= cr.end; ch++ {
			if x+charWidth > atlasSize {
				x = 0
				y += charHeight
			}
			if y+charHeight > atlasSize {
				break
			}
			if _, hasGlyph := face.GlyphAdvance(ch); !hasGlyph {
				continue
			}

			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(string(ch))

			c.glyphs[ch] = glyphInfo{
				X:           float32(x) / atlasSize,
				Y:           float32(y-metrics.Ascent.Ceil()) / atlasSize,
				Width:       float32(charWidth) / atlasSize,
				Height:      float32(charHeight) / atlasSize,
				PixelWidth:  charWidth,
				PixelHeight: charHeight,
			}
			x += charWidth
		}
	}

	alphaAtlas := make([]byte, atlasSize*atlasSize)
	for i := range alphaAtlas {
		alphaAtlas[i] = atlas.Pix[i*4+3]
	}

	gl.GenTextures(1, &c.fontAtlas)
	gl.BindTexture(gl.TEXTURE_2D, c.fontAtlas)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, atlasSize, atlasSize, 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(alphaAtlas))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return nil
}

func (c *Composer) initGL() error {
	vertShader := `
		#version 410 core
		layout (location = 0) in vec2 aPos;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(aPos, 0.0, 1.0);
		}
	` + "\x00"

	fragShader := `
		#version 410 core
		out vec4 FragColor;
		uniform vec4 color;
		void main() {
			FragColor = color;
		}
	` + "\x00"

	var err error
	c.quadProgram, err = createProgram(vertShader, fragShader)
	if err != nil {
		return fmt.Errorf("composer: quad shader: %w", err)
	}
	c.quadColorLoc = gl.GetUniformLocation(c.quadProgram, gl.Str("color\x00"))
	c.quadProjLoc = gl.GetUniformLocation(c.quadProgram, gl.Str("projection\x00"))

	textVertShader := `
		#version 410 core
		layout (location = 0) in vec4 vertex;
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"

	textFragShader := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D text;
		uniform vec4 textColor;
		void main() {
			float alpha = texture(text, TexCoords).r;
			FragColor = vec4(textColor.rgb, textColor.a * alpha);
		}
	` + "\x00"

	c.textProgram, err = createProgram(textVertShader, textFragShader)
	if err != nil {
		return fmt.Errorf("composer: text shader: %w", err)
	}
	c.textColorLoc = gl.GetUniformLocation(c.textProgram, gl.Str("textColor\x00"))
	c.textProjLoc = gl.GetUniformLocation(c.textProgram, gl.Str("projection\x00"))
	c.textTexLoc = gl.GetUniformLocation(c.textProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &c.quadVAO)
	gl.GenBuffers(1, &c.quadVBO)
	gl.BindVertexArray(c.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &c.textVAO)
	gl.GenBuffers(1, &c.textVBO)
	gl.BindVertexArray(c.textVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.textVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}

// Bounds is the pixel rectangle a Paint call fills, letting the caller
// reserve space for chrome (tab bar, find panel) around the grid.
type Bounds struct {
	X, Y          float32
	Width, Height float32
}

// Paint draws one full frame: background fill, every cached row's spans and
// shaped runs, the cursor (if cursorVisible — the caller has already folded
// the blink state and snap.Cursor.Visible together), and the scrollbar.
// GL has no persistent framebuffer this package can diff against, so every
// row paints each frame regardless of which ones rowcache marked dirty;
// dirty tracking only saved the upstream CPU-side rebuild.
func (c *Composer) Paint(snap *snapshot.Snapshot, cache *rowcache.Cache, bounds Bounds, geom interaction.ScrollbarGeometry, cursorVisible, focused bool) {
	proj := orthoMatrix(0, bounds.Width, bounds.Height, 0)

	bg := snap.Palette.Background
	gl.Scissor(int32(bounds.X), int32(bounds.Y), int32(bounds.Width), int32(bounds.Height))
	gl.Enable(gl.SCISSOR_TEST)
	gl.ClearColor(toUnit(bg.R), toUnit(bg.G), toUnit(bg.B), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	rows := cache.Len()
	if rows > snap.NumLines {
		rows = snap.NumLines
	}
	for row := 0; row < rows; row++ {
		cached := cache.Row(row)
		y := bounds.Y + float32(row)*c.CellHeight

		for _, span := range cached.Spans {
			x := bounds.X + float32(span.StartCol)*c.CellWidth
			c.drawRect(x, y, float32(span.Len)*c.CellWidth, c.CellHeight, toRGBAf(span.Color), proj)
		}

		for _, run := range cached.Runs {
			fg := toRGBAf(run.Fg)
			runX := bounds.X + float32(run.StartCol)*c.CellWidth
			for _, g := range run.Glyphs {
				gx := runX + fixedToFloat(g.X)
				c.drawChar(gx, y+c.CellHeight, g.Rune, fg, proj)
				if run.Bold {
					// No distinct bold face is shipped (rowcache.Shaper's
					// comment), so bold text gets a one-pixel double-strike
					// instead of a second, heavier glyph.
					c.drawChar(gx+1, y+c.CellHeight, g.Rune, fg, proj)
				}
			}
		}
	}

	if cursorVisible && snap.Cursor.Visible && snap.Cursor.Col < snap.NumCols {
		c.paintCursor(snap, bounds, proj, focused)
	}

	if geom.Visible {
		c.paintScrollbar(geom, bounds, proj, snap.Palette.Foreground)
	}

	gl.Disable(gl.SCISSOR_TEST)
}

// The hollow block (drawHollowBlock) is a composer-local fourth shape: the
// emulator never reports it (snapshot.CursorShape only carries Block/Underline/Bar), but losing
// window focus downgrades a solid block to a hollow outline, the common
// terminal convention for "this terminal isn't receiving your keystrokes".
func (c *Composer) paintCursor(snap *snapshot.Snapshot, bounds Bounds, proj [16]float32, focused bool) {
	x := bounds.X + float32(snap.Cursor.Col)*c.CellWidth
	y := bounds.Y + float32(snap.Cursor.Row)*c.CellHeight
	clr := toRGBAf(snap.Palette.Cursor)

	if !focused && snap.Cursor.Shape == snapshot.CursorBlock {
		c.drawHollowBlock(x, y, clr, proj)
		return
	}

	switch snap.Cursor.Shape {
	case snapshot.CursorBar:
		w := clampF(c.CellWidth*0.14, 1, 2)
		c.drawRect(x, y, w, c.CellHeight, clr, proj)
	case snapshot.CursorUnderline:
		h := clampF(c.CellHeight*0.12, 1, 2)
		c.drawRect(x, y+c.CellHeight-h, c.CellWidth, h, clr, proj)
	default:
		c.drawRect(x, y, c.CellWidth, c.CellHeight, clr, proj)
	}
}

func (c *Composer) drawHollowBlock(x, y float32, clr [4]float32, proj [16]float32) {
	stroke := clampF(c.CellWidth*0.1, 1, minF(c.CellWidth, c.CellHeight)/2)
	c.drawRect(x, y, c.CellWidth, stroke, clr, proj)
	c.drawRect(x, y+c.CellHeight-stroke, c.CellWidth, stroke, clr, proj)
	c.drawRect(x, y, stroke, c.CellHeight, clr, proj)
	c.drawRect(x+c.CellWidth-stroke, y, stroke, c.CellHeight, clr, proj)
}

// paintScrollbar draws the track (a faint tint so its extent is visible
// even at rest) and the thumb, right-aligned within bounds.
func (c *Composer) paintScrollbar(geom interaction.ScrollbarGeometry, bounds Bounds, proj [16]float32, fg color.RGBA) {
	trackX := bounds.X + bounds.Width - interaction.ScrollbarWidth - interaction.ScrollbarPadding
	track := [4]float32{toUnit(fg.R), toUnit(fg.G), toUnit(fg.B), 0.08}
	thumb := [4]float32{toUnit(fg.R), toUnit(fg.G), toUnit(fg.B), 0.35}

	c.drawRect(trackX, bounds.Y, interaction.ScrollbarWidth, geom.TrackHeight, track, proj)
	c.drawRect(trackX, bounds.Y+float32(geom.ThumbTop), interaction.ScrollbarWidth, float32(geom.ThumbHeight), thumb, proj)
}

// DrawToast overlays message in the bottom-right corner of bounds, using bg
// and fg from the active palette (the confirmation after an explicit
// Cmd/Ctrl+C copy). A message wider than the available width is truncated with an
// ellipsis; an empty message draws nothing.
func (c *Composer) DrawToast(message string, bounds Bounds, bg, fg color.RGBA) {
	if strings.TrimSpace(message) == "" {
		return
	}
	proj := orthoMatrix(0, bounds.Width, bounds.Height, 0)

	paddingX := c.CellWidth * 0.8
	paddingY := c.CellHeight * 0.35
	margin := c.CellWidth * 0.8

	runes := []rune(message)
	textWidth := float32(len(runes)) * c.CellWidth
	boxW := textWidth + paddingX*2
	boxH := c.CellHeight + paddingY*2

	maxWidth := bounds.Width - margin*2
	if boxW > maxWidth {
		maxChars := int((maxWidth - paddingX*2) / c.CellWidth)
		if maxChars <= 3 {
			return
		}
		runes = append([]rune(string(runes[:maxChars-3])), '.', '.', '.')
		textWidth = float32(len(runes)) * c.CellWidth
		boxW = textWidth + paddingX*2
	}

	x := bounds.X + bounds.Width - boxW - margin
	y := bounds.Y + bounds.Height - boxH - margin

	boxBg := toRGBAf(bg)
	boxBg[3] = 0.85
	c.drawRect(x, y, boxW, boxH, boxBg, proj)

	textFg := toRGBAf(fg)
	gx := x + paddingX
	for _, r := range runes {
		c.drawChar(gx, y+boxH-paddingY, r, textFg, proj)
		gx += c.CellWidth
	}
}

func (c *Composer) drawRect(x, y, w, h float32, clr [4]float32, proj [16]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}

	gl.UseProgram(c.quadProgram)
	gl.UniformMatrix4fv(c.quadProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(c.quadColorLoc, 1, &clr[0])

	gl.BindVertexArray(c.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (c *Composer) drawChar(x, y float32, ch rune, clr [4]float32, proj [16]float32) {
	g, ok := c.glyphs[ch]
	if !ok {
		g, ok = c.glyphs['�']
		if !ok {
			return
		}
	}

	w := float32(g.PixelWidth)
	h := float32(g.PixelHeight)
	tx, ty, tw, th := g.X, g.Y, g.Width, g.Height

	vertices := []float32{
		x, y - h, tx, ty,
		x + w, y - h, tx + tw, ty,
		x + w, y, tx + tw, ty + th,
		x, y - h, tx, ty,
		x + w, y, tx + tw, ty + th,
		x, y, tx, ty + th,
	}

	gl.UseProgram(c.textProgram)
	gl.UniformMatrix4fv(c.textProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(c.textColorLoc, 1, &clr[0])
	gl.Uniform1i(c.textTexLoc, 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, c.fontAtlas)

	gl.BindVertexArray(c.textVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.textVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Destroy releases this Composer's GL resources.
func (c *Composer) Destroy() {
	gl.DeleteTextures(1, &c.fontAtlas)
	gl.DeleteVertexArrays(1, &c.quadVAO)
	gl.DeleteBuffers(1, &c.quadVBO)
	gl.DeleteVertexArrays(1, &c.textVAO)
	gl.DeleteBuffers(1, &c.textVBO)
	gl.DeleteProgram(c.quadProgram)
	gl.DeleteProgram(c.textProgram)
}

func toUnit(v uint8) float32 { return float32(v) / 255 }

func toRGBAf(c color.RGBA) [4]float32 {
	return [4]float32{toUnit(c.R), toUnit(c.G), toUnit(c.B), 1.0}
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func orthoMatrix(left, right, bottom, top float32) [16]float32 {
	const near, far float32 = -1, 1
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

func createProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link program: %v", log)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile shader: %v", log)
	}

	return shader, nil
}
