package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDebouncerBatchesChanges(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string

	d := NewDebouncer(50 * time.Millisecond)
	d.SetCallback(func(files []string) {
		mu.Lock()
		batches = append(batches, files)
		mu.Unlock()
	})
	defer d.Stop()

	d.Add("a.go")
	d.Add("b.go")
	d.Add("a.go")

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(batches))
	}
	if len(batches[0]) != 2 {
		t.Errorf("expected 2 unique files, got %v", batches[0])
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	fired := false

	d := NewDebouncer(50 * time.Millisecond)
	d.SetCallback(func([]string) {
		mu.Lock()
		fired = true
		mu.Unlock()
	})

	d.Add("a.go")
	d.Stop()

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("stopped debouncer must not fire")
	}
}

func TestShouldIgnore(t *testing.T) {
	fw := &FileWatcher{ignored: []string{".beacon-cache"}}

	cases := []struct {
		path string
		want bool
	}{
		{"views/person.go", false},
		{"views/person_beacon.go", true},
		{"views/.hidden.go", true},
		{"views/testdata", true},
		{"vendor", true},
		{".beacon-cache", true},
		{"a/.beacon-cache/groups.msgpack", true},
		{"models/address.go", false},
	}
	for _, tc := range cases {
		if got := fw.shouldIgnore(tc.path); got != tc.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestWatcherDetectsChanges(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "views")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	changes := make(chan []string, 4)
	fw, err := NewFileWatcher(root, nil, nil, func(files []string) error {
		changes <- files
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := fw.Start(); err != nil {
		t.Fatal(err)
	}
	defer fw.Stop()

	if err := os.WriteFile(filepath.Join(sub, "person.go"), []byte("package views\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-changes:
		if len(files) == 0 {
			t.Error("empty change batch")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification for new go file")
	}
}

func TestWatcherIgnoresGeneratedOutput(t *testing.T) {
	root := t.TempDir()

	changes := make(chan []string, 4)
	fw, err := NewFileWatcher(root, nil, nil, func(files []string) error {
		changes <- files
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := fw.Start(); err != nil {
		t.Fatal(err)
	}
	defer fw.Stop()

	if err := os.WriteFile(filepath.Join(root, "person_beacon.go"), []byte("package views\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-changes:
		t.Fatalf("generated output must not trigger a pass: %v", files)
	case <-time.After(500 * time.Millisecond):
	}
}
