// Package procinfo tracks the terminal's foreground process: the process
// group leader of the controlling tty, falling back to the PTY child's own
// pid, with a cached snapshot of its name/cwd/argv.
package procinfo

import (
	"sync"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

// fdHolder is satisfied by ptyproc.Process; kept narrow so procinfo doesn't
// need to import ptyproc.
type fdHolder interface {
	Fd() uintptr
	ChildPid() int
}

// Snapshot is the cached information about the foreground process.
type Snapshot struct {
	Name string
	Cwd  string
	Argv []string
}

// Getter pairs the controlling-tty fd with the child pid fallback and
// caches the last successful snapshot.
type Getter struct {
	holder fdHolder

	mu     sync.Mutex
	cached *Snapshot
}

// New creates a Getter for the given PTY process.
func New(holder fdHolder) *Getter {
	return &Getter{holder: holder}
}

// Pid returns the foreground process-group leader for the controlling tty,
// falling back to the PTY child's own pid if the ioctl fails.
func (g *Getter) Pid() int {
	pgid, err := unix.IoctlGetInt(int(g.holder.Fd()), unix.TIOCGPGRP)
	if err != nil {
		return g.holder.ChildPid()
	}
	return pgid
}

// KillCurrentProcess sends SIGKILL to the foreground process group.
func (g *Getter) KillCurrentProcess() error {
	pid := g.Pid()
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}

// KillChildProcess kills the spawned child directly, regardless of which
// process is currently in the foreground.
func (g *Getter) KillChildProcess() error {
	pid := g.holder.ChildPid()
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(pid, syscall.SIGKILL)
}

// Load refreshes the cached snapshot from the system process table. It
// never overwrites the cache with a nil result — a failed lookup just keeps
// the last known-good snapshot (the invariant spec.md §4.5 requires).
// Use Update to force-clear the cache instead.
func (g *Getter) Load() {
	pid := g.Pid()
	if pid <= 0 {
		return
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return
	}

	snap := &Snapshot{}
	if name, err := proc.Name(); err == nil {
		snap.Name = name
	}
	if cwd, err := proc.Cwd(); err == nil {
		snap.Cwd = cwd
	}
	if argv, err := proc.CmdlineSlice(); err == nil {
		snap.Argv = argv
	}

	if snap.Name == "" && snap.Cwd == "" && len(snap.Argv) == 0 {
		return
	}

	g.mu.Lock()
	g.cached = snap
	g.mu.Unlock()
}

// Update replaces the cache unconditionally, including with nil, unlike
// Load.
func (g *Getter) Update(snap *Snapshot) {
	g.mu.Lock()
	g.cached = snap
	g.mu.Unlock()
}

// Cached returns the last cached snapshot, or nil if none has been loaded.
func (g *Getter) Cached() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cached
}

// SetShellCwd records a cwd reported via OSC 7 by the shell itself,
// supplementing the gopsutil-derived cwd when the process table lookup is
// unavailable or stale (see SPEC_FULL.md §6).
func (g *Getter) SetShellCwd(cwd string) {
	if cwd == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached == nil {
		g.cached = &Snapshot{}
	}
	g.cached.Cwd = cwd
}
