package appwindow

import (
	"os/exec"
	"runtime"
)

// OpenURL dispatches target to the OS's default handler (spec.md §6's
// "URL opening: delegated to the UI host"), grounded on the teacher's
// main.go openURL.
func OpenURL(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
