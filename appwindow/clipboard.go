package appwindow

import "github.com/go-gl/glfw/v3.3/glfw"

// ClipboardRead returns the current system clipboard text.
func ClipboardRead() string {
	return glfw.GetClipboardString()
}

// ClipboardWrite sets the system clipboard text.
func ClipboardWrite(text string) {
	glfw.SetClipboardString(text)
}
