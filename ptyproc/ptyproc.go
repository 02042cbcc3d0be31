// Package ptyproc spawns a login shell under a pseudo-terminal and exposes
// its file descriptor for reading, writing, and resizing.
package ptyproc

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// Shell selects how the child shell is invoked.
type Shell struct {
	// Path overrides the user's login shell when non-empty.
	Path string
	// Args, when non-empty, replaces the default interactive-shell argument
	// selection entirely (Settings' Program/WithArguments variants).
	Args []string
	// SourceRC controls whether the shell sources the user's rc files.
	SourceRC bool
	// Dir is the child's initial working directory. Empty means the
	// user's home directory (config.Settings' WorkingDirectoryPolicy
	// "home", also the fallback when the configured directory doesn't
	// exist).
	Dir string
}

// Process owns a spawned PTY child.
type Process struct {
	cmd *exec.Cmd
	pty *os.File

	mu sync.Mutex

	exitedMu sync.Mutex
	exited   bool
	exitCode int
}

// Start spawns the configured shell with the given initial size and
// environment. env is the full child environment (already merged with any
// forced overrides by the caller).
func Start(shellCfg Shell, env []string, cols, rows uint16) (*Process, error) {
	shellPath := resolveShell(shellCfg)

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("ptyproc: resolve current user: %w", err)
	}

	cmd := buildCommand(shellPath, shellCfg)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Env = env
	cmd.Dir = currentUser.HomeDir
	if shellCfg.Dir != "" {
		if info, err := os.Stat(shellCfg.Dir); err == nil && info.IsDir() {
			cmd.Dir = shellCfg.Dir
		}
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("ptyproc: start pty: %w", err)
	}

	p := &Process{cmd: cmd, pty: ptmx}

	go func() {
		err := cmd.Wait()
		code := 0
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			} else {
				code = -1
			}
		}
		p.exitedMu.Lock()
		p.exited = true
		p.exitCode = code
		p.exitedMu.Unlock()
	}()

	return p, nil
}

func buildCommand(shellPath string, cfg Shell) *exec.Cmd {
	if len(cfg.Args) > 0 {
		return exec.Command(shellPath, cfg.Args...)
	}

	shellBase := shellPath
	if idx := strings.LastIndex(shellPath, "/"); idx >= 0 {
		shellBase = shellPath[idx+1:]
	}

	if cfg.SourceRC {
		switch shellBase {
		case "bash", "zsh", "fish":
			return exec.Command(shellPath, "-i")
		default:
			return exec.Command(shellPath, "-i")
		}
	}

	switch shellBase {
	case "bash":
		return exec.Command(shellPath, "--noprofile", "--norc", "-i")
	case "zsh":
		return exec.Command(shellPath, "--no-rcs", "-i")
	case "fish":
		return exec.Command(shellPath, "--no-config", "-i")
	default:
		return exec.Command(shellPath, "-i")
	}
}

// resolveShell finds the shell binary to run, preferring an explicit
// override, then the user's /etc/passwd shell, then common fallbacks.
func resolveShell(cfg Shell) string {
	if cfg.Path != "" {
		if _, err := os.Stat(cfg.Path); err == nil {
			return cfg.Path
		}
	}

	if currentUser, err := user.Current(); err == nil {
		if shell := passwdShell(currentUser.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}

	for _, shell := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func passwdShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Read reads raw bytes from the PTY master.
func (p *Process) Read(buf []byte) (int, error) {
	return p.pty.Read(buf)
}

// Write writes bytes to the PTY master (terminal input).
func (p *Process) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty.Write(data)
}

// Resize updates the PTY window size.
func (p *Process) Resize(cols, rows uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pty.Setsize(p.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

// HasExited reports whether the child process has terminated, and its
// exit code if so.
func (p *Process) HasExited() (bool, int) {
	p.exitedMu.Lock()
	defer p.exitedMu.Unlock()
	return p.exited, p.exitCode
}

// Kill forcibly terminates the child process.
func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Close kills the child and releases the PTY master fd.
func (p *Process) Close() error {
	p.mu.Lock()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.mu.Unlock()
	return p.pty.Close()
}

// Fd returns the PTY master file descriptor, used by procinfo for
// foreground process-group lookups.
func (p *Process) Fd() uintptr {
	return p.pty.Fd()
}

// ChildPid returns the spawned child's own pid, the fallback procinfo uses
// when the foreground process-group lookup fails.
func (p *Process) ChildPid() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}
