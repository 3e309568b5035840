package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectsFileChange(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "project.json")
	writeFile(t, tmpFile, `{"concepts": []}`)

	var (
		changeMu sync.Mutex
		changed  bool
	)

	w, err := New(tmpFile,
		WithDebounce(50*time.Millisecond),
		WithOnChange(func() {
			changeMu.Lock()
			changed = true
			changeMu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Give watcher time to initialize.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, tmpFile, `{"concepts": [{"name": "Limit"}]}`)

	time.Sleep(300 * time.Millisecond)

	changeMu.Lock()
	wasChanged := changed
	changeMu.Unlock()
	if !wasChanged {
		t.Error("expected change to be detected")
	}
}

func TestPollingFallback(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "project.json")
	writeFile(t, tmpFile, "initial")

	var (
		changeMu sync.Mutex
		changed  bool
	)

	w, err := New(tmpFile,
		WithDebounce(50*time.Millisecond),
		WithPollInterval(100*time.Millisecond),
		WithForcePoll(true),
		WithOnChange(func() {
			changeMu.Lock()
			changed = true
			changeMu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected watcher to be in polling mode")
	}

	time.Sleep(50 * time.Millisecond)
	writeFile(t, tmpFile, "modified via polling")
	time.Sleep(300 * time.Millisecond)

	changeMu.Lock()
	wasChanged := changed
	changeMu.Unlock()
	if !wasChanged {
		t.Error("expected change to be detected via polling")
	}
}

func TestChangedChannel(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "project.json")
	writeFile(t, tmpFile, "initial")

	w, err := New(tmpFile,
		WithDebounce(50*time.Millisecond),
		WithPollInterval(100*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(tmpFile, []byte("new content"), 0o644)
	}()

	select {
	case <-w.Changed():
	case <-time.After(500 * time.Millisecond):
		t.Error("timeout waiting for change notification")
	}
}

func TestDebounceCoalescesBurst(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "project.json")
	writeFile(t, tmpFile, "0")

	var (
		countMu sync.Mutex
		count   int
	)

	w, err := New(tmpFile,
		WithDebounce(150*time.Millisecond),
		WithPollInterval(20*time.Millisecond),
		WithForcePoll(true),
		WithOnChange(func() {
			countMu.Lock()
			count++
			countMu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// A burst of rewrites inside the debounce window.
	for i := 0; i < 5; i++ {
		writeFile(t, tmpFile, time.Now().String())
		time.Sleep(30 * time.Millisecond)
	}
	time.Sleep(400 * time.Millisecond)

	countMu.Lock()
	got := count
	countMu.Unlock()
	if got != 1 {
		t.Errorf("expected 1 coalesced notification, got %d", got)
	}
}

func TestFileRemoved(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "project.json")
	writeFile(t, tmpFile, "initial")

	var (
		errMu    sync.Mutex
		gotError error
	)

	w, err := New(tmpFile,
		WithDebounce(50*time.Millisecond),
		WithPollInterval(100*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			errMu.Lock()
			gotError = err
			errMu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.Remove(tmpFile); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	errMu.Lock()
	receivedError := gotError
	errMu.Unlock()
	if receivedError != ErrFileRemoved {
		t.Errorf("expected ErrFileRemoved, got %v", receivedError)
	}
}

func TestStartStop(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "project.json")
	writeFile(t, tmpFile, "initial")

	w, err := New(tmpFile)
	if err != nil {
		t.Fatal(err)
	}

	if w.IsStarted() {
		t.Error("watcher should not be started initially")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Error("watcher should be started after Start()")
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	w.Stop()
	if w.IsStarted() {
		t.Error("watcher should not be started after Stop()")
	}
	// Double stop is safe.
	w.Stop()
}

func TestPathIsAbsolute(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "project.json")
	writeFile(t, tmpFile, "initial")

	w, err := New(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	absPath, _ := filepath.Abs(tmpFile)
	if w.Path() != absPath {
		t.Errorf("expected path %s, got %s", absPath, w.Path())
	}
}
