package level

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnNewFile(t *testing.T) {
	dir := t.TempDir()
	loader := &Loader{Dirs: []string{dir}}
	levels, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	reg, err := NewRegistry(levels)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(loader, reg, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	w.debounce = 20 * time.Millisecond

	reloads := make(chan int, 8)
	w.OnReload(func(list []Info, err error) {
		if err != nil {
			t.Errorf("reload error: %v", err)
		}
		reloads <- len(list)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, filepath.Join(dir, "tiny.yaml"), minimalYAML)

	select {
	case n := <-reloads:
		if n != 11 {
			t.Errorf("reloaded %d levels, expected 11", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}
	if !reg.Exists("tiny") {
		t.Error("registry should contain the new level")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherKeepsLevelsOnBadReload(t *testing.T) {
	dir := t.TempDir()
	loader := &Loader{Dirs: []string{dir}}
	levels, _ := loader.LoadAll()
	reg, err := NewRegistry(levels)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(loader, reg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()

	// Same ordinal as an embedded level under a new ID
	writeFile(t, filepath.Join(dir, "clash.yaml"), `
id: clash
ordinal: 1
field: {w: 10, h: 10}
lives: 1
win: {kind: none}
`)
	var gotErr error
	w.OnReload(func(_ []Info, err error) { gotErr = err })
	w.reload()

	if gotErr == nil {
		t.Error("expected a reload error for a shared ordinal")
	}
	if reg.Exists("clash") || reg.Len() != 10 {
		t.Error("failed reload should keep the previous levels")
	}
}
