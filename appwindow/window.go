// Package appwindow owns the GLFW/OpenGL window, translates GLFW input
// events into the GUI-agnostic types keyenc/mouseenc/interaction consume,
// and provides the handful of OS-facing services (clipboard, icon, URL
// opening) those packages have no business knowing about.
//
// Grounded on the teacher's src/window/window.go for window lifecycle and
// main.go for callback wiring, generalized so input translation is a pure
// function (keymap.go) independent of any live GLFW state.
package appwindow

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

// Config holds window creation parameters.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig returns the default window configuration.
func DefaultConfig() Config {
	return Config{Width: 900, Height: 600, Title: "Simple Terminal"}
}

// Window wraps a GLFW window with its OpenGL context.
type Window struct {
	glfw         *glfw.Window
	config       Config
	isFullscreen bool
	savedX       int
	savedY       int
	savedWidth   int
	savedHeight  int
}

// NewWindow creates a GLFW window with a 4.1 core-profile OpenGL context,
// enables vsync and alpha blending, and loads the application icon.
func NewWindow(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("appwindow: init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)

	glfw.WindowHintString(glfw.X11ClassName, "simple-terminal")
	glfw.WindowHintString(glfw.X11InstanceName, "simple-terminal")

	win, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("appwindow: create window: %w", err)
	}

	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("appwindow: init gl: %w", err)
	}

	glfw.SwapInterval(1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	w := &Window{glfw: win, config: config}
	w.loadIcon()
	return w, nil
}

// GLFW returns the underlying GLFW window, for callback registration.
func (w *Window) GLFW() *glfw.Window {
	return w.glfw
}

// GetSize returns the window's logical size in screen coordinates.
func (w *Window) GetSize() (int, int) {
	return w.glfw.GetSize()
}

// GetFramebufferSize returns the window's size in pixels, which on
// HiDPI displays differs from GetSize.
func (w *Window) GetFramebufferSize() (int, int) {
	return w.glfw.GetFramebufferSize()
}

func (w *Window) ShouldClose() bool {
	return w.glfw.ShouldClose()
}

func (w *Window) SetShouldClose(close bool) {
	w.glfw.SetShouldClose(close)
}

func (w *Window) SwapBuffers() {
	w.glfw.SwapBuffers()
}

func (w *Window) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ToggleFullscreen switches between windowed and borderless-fullscreen on
// the primary monitor, saving/restoring the windowed geometry.
func (w *Window) ToggleFullscreen() {
	if w.isFullscreen {
		w.glfw.SetMonitor(nil, w.savedX, w.savedY, w.savedWidth, w.savedHeight, 0)
		w.isFullscreen = false
		return
	}
	w.savedX, w.savedY = w.glfw.GetPos()
	w.savedWidth, w.savedHeight = w.glfw.GetSize()
	monitor := glfw.GetPrimaryMonitor()
	mode := monitor.GetVideoMode()
	w.glfw.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	w.isFullscreen = true
}

func (w *Window) IsFullscreen() bool {
	return w.isFullscreen
}

func (w *Window) loadIcon() {
	icons := LoadIconSizes()
	if len(icons) > 0 {
		w.glfw.SetIcon(icons)
	}
}

// Destroy releases the window and terminates GLFW.
func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}

// PollEvents processes pending input events, dispatching registered
// callbacks. Call once per frame from the main thread.
func PollEvents() {
	glfw.PollEvents()
}
