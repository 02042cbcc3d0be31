package interaction

import (
	"testing"
	"time"
)

func TestToastTextEmptyBeforeShow(t *testing.T) {
	var toast Toast
	if got := toast.Text(time.Now()); got != "" {
		t.Errorf("expected empty text before Show, got %q", got)
	}
}

func TestToastTextVisibleThenExpires(t *testing.T) {
	var toast Toast
	now := time.Now()
	toast.Show("Copied to clipboard", now)

	if got := toast.Text(now); got != "Copied to clipboard" {
		t.Errorf("expected message immediately after Show, got %q", got)
	}
	if got := toast.Text(now.Add(toastDuration - time.Millisecond)); got != "Copied to clipboard" {
		t.Errorf("expected message still visible just before duration elapses, got %q", got)
	}
	if got := toast.Text(now.Add(toastDuration)); got != "" {
		t.Errorf("expected message cleared once duration has elapsed, got %q", got)
	}
}

func TestToastShowReplacesPreviousMessage(t *testing.T) {
	var toast Toast
	now := time.Now()
	toast.Show("first", now)
	toast.Show("second", now.Add(time.Millisecond))

	if got := toast.Text(now.Add(time.Millisecond)); got != "second" {
		t.Errorf("expected latest Show to replace the message, got %q", got)
	}
}
