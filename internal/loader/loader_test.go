// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadFilesPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.yaml", "steps:\n  - one\n")
	second := writeFile(t, dir, "second.yaml", "steps:\n  - two\n")

	payloads, err := ReadFiles([]string{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	if payloads[0].Text != "steps:\n  - one" || payloads[1].Text != "steps:\n  - two" {
		t.Fatalf("unexpected payload order: %q, %q", payloads[0].Text, payloads[1].Text)
	}
	if payloads[0].Source != first {
		t.Fatalf("expected source %s, got %s", first, payloads[0].Source)
	}
}

func TestReadFilesMissingFile(t *testing.T) {
	if _, err := ReadFiles([]string{filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadFilesRejectsBlankFile(t *testing.T) {
	dir := t.TempDir()
	blank := writeFile(t, dir, "blank.yaml", "  \n\t\n")
	if _, err := ReadFiles([]string{blank}); err == nil {
		t.Fatal("expected error for whitespace-only file")
	}
}

func TestWatcherReportsChangedSeedFile(t *testing.T) {
	dir := t.TempDir()
	watched := writeFile(t, dir, "watched.yaml", "v1")
	writeFile(t, dir, "ignored.yaml", "v1")

	changed := make(chan string, 4)
	w, err := NewWatcher([]string{watched}, func(path string) {
		changed <- path
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()
	w.Start()

	writeFile(t, dir, "ignored.yaml", "v2")
	writeFile(t, dir, "watched.yaml", "v2")

	select {
	case path := <-changed:
		if path != watched {
			t.Fatalf("expected change for %s, got %s", watched, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change event delivered")
	}

	// The write to ignored.yaml must not have produced an event.
	select {
	case path := <-changed:
		t.Fatalf("unexpected extra change event for %s", path)
	case <-time.After(200 * time.Millisecond):
	}
}
