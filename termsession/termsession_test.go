package termsession

import (
	"testing"
	"time"

	headlessterm "github.com/danielgatis/go-headless-term"

	"github.com/simpleterm/simpleterm/config"
)

func testSettings(args ...string) *config.Settings {
	s := config.Default()
	s.Shell.Kind = config.ShellWithArguments
	s.Shell.Program = "/bin/sh"
	s.Shell.Args = args
	return s
}

func TestSessionWritesShellOutputToEmulator(t *testing.T) {
	s, err := Start(testSettings("-c", "printf hello"), 80, 24)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Shutdown()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Kind == EventExit {
				var text string
				s.WithLock(func(term *headlessterm.Terminal) {
					text = term.LineContent(0)
				})
				if text == "" {
					t.Error("expected shell output to reach the emulator before exit")
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for shell exit event")
		}
	}
}

func TestSessionEventKeepLatestOnExit(t *testing.T) {
	s, err := Start(testSettings("-c", "exit 7"), 80, 24)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Shutdown()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Kind == EventExit {
				if ev.ExitCode != 7 {
					t.Errorf("expected exit code 7, got %d", ev.ExitCode)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for exit event")
		}
	}
}

func TestSessionShutdownIsIdempotent(t *testing.T) {
	s, err := Start(testSettings("-c", "sleep 5"), 80, 24)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("first Shutdown: %v", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("second Shutdown should be a no-op, got: %v", err)
	}
}

func TestBuildEnvForcesTerm(t *testing.T) {
	env := buildEnv(map[string]string{"TERM": "dumb", "FOO": "bar"})
	found := false
	for _, kv := range env {
		if kv == "TERM=xterm-256color" {
			found = true
		}
		if kv == "TERM=dumb" {
			t.Error("user TERM override should be ignored")
		}
	}
	if !found {
		t.Error("expected TERM=xterm-256color to be forced")
	}
}

func TestResolveStartDir(t *testing.T) {
	tests := []struct {
		name           string
		policy         string
		lastSessionDir string
		want           string
	}{
		{"empty policy defaults home", "", "/prev/cwd", ""},
		{"home policy ignores last session", "home", "/prev/cwd", ""},
		{"last_session uses resolved dir", "last_session", "/prev/cwd", "/prev/cwd"},
		{"explicit path wins", "/explicit/path", "/prev/cwd", "/explicit/path"},
	}
	for _, tt := range tests {
		if got := resolveStartDir(tt.policy, tt.lastSessionDir); got != tt.want {
			t.Errorf("%s: resolveStartDir(%q, %q) = %q, want %q", tt.name, tt.policy, tt.lastSessionDir, got, tt.want)
		}
	}
}

func TestStartInUsesResolvedWorkingDirectory(t *testing.T) {
	settings := testSettings("-c", "pwd")
	settings.WorkingDirectoryPolicy = "/tmp"

	s, err := StartIn(settings, 80, 24, "")
	if err != nil {
		t.Fatalf("StartIn: %v", err)
	}
	defer s.Shutdown()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Kind == EventExit {
				var text string
				s.WithLock(func(term *headlessterm.Terminal) {
					text = term.LineContent(0)
				})
				if text == "" {
					t.Error("expected pwd output before exit")
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for shell exit event")
		}
	}
}

func TestClampScrollback(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10000},
		{-5, 10000},
		{500000, 100000},
		{2000, 2000},
	}
	for _, tt := range tests {
		if got := clampScrollback(tt.in); got != tt.want {
			t.Errorf("clampScrollback(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
