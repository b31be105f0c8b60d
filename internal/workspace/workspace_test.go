package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boshu2/manifest/internal/types"
)

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "vendor"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package vendor"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestWithWorkspaceCopiesExcludingDirs(t *testing.T) {
	project := setupProject(t)
	base := t.TempDir()
	m := New(project, filepath.Join(base, "workspaces"), []string{"vendor"}, 1<<30, time.Second)

	var seenPath string
	err := m.WithWorkspace(context.Background(), "att-1", nil, "", "", func(path string) error {
		seenPath = path
		if _, err := os.Stat(filepath.Join(path, "main.go")); err != nil {
			t.Errorf("expected main.go copied: %v", err)
		}
		if _, err := os.Stat(filepath.Join(path, "vendor", "dep.go")); !os.IsNotExist(err) {
			t.Errorf("expected vendor/ excluded from copy")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithWorkspace: %v", err)
	}
	if _, err := os.Stat(seenPath); !os.IsNotExist(err) {
		t.Errorf("expected workspace removed after WithWorkspace returns")
	}
}

func TestWithWorkspaceAppliesFileChanges(t *testing.T) {
	project := setupProject(t)
	base := t.TempDir()
	m := New(project, filepath.Join(base, "workspaces"), nil, 1<<30, time.Second)

	changes := []types.FileChange{
		{Path: "new.go", Action: types.ActionCreate, Content: "package main\n"},
	}
	err := m.WithWorkspace(context.Background(), "att-2", changes, "", "", func(path string) error {
		data, err := os.ReadFile(filepath.Join(path, "new.go"))
		if err != nil {
			t.Fatalf("expected new.go written: %v", err)
		}
		if string(data) != "package main\n" {
			t.Errorf("new.go content = %q", data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithWorkspace: %v", err)
	}
}

func TestWithWorkspaceCleansUpOnPanic(t *testing.T) {
	project := setupProject(t)
	base := t.TempDir()
	m := New(project, filepath.Join(base, "workspaces"), nil, 1<<30, time.Second)

	var path string
	func() {
		defer func() { _ = recover() }()
		_ = m.WithWorkspace(context.Background(), "att-3", nil, "", "", func(p string) error {
			path = p
			panic("boom")
		})
	}()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected workspace removed after panic")
	}
}

func TestSweepRemovesOrphans(t *testing.T) {
	base := t.TempDir()
	workspaces := filepath.Join(base, "workspaces")
	if err := os.MkdirAll(filepath.Join(workspaces, "orphan-1"), 0o755); err != nil {
		t.Fatal(err)
	}
	m := New(t.TempDir(), workspaces, nil, 1<<30, time.Second)
	removed, err := m.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(removed) != 1 || removed[0] != "orphan-1" {
		t.Fatalf("expected orphan-1 removed, got %v", removed)
	}
}

func TestDiskCapAcquireTimesOut(t *testing.T) {
	cap := newDiskCap(1, 50*time.Millisecond)
	if err := cap.acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := cap.acquire(context.Background()); err == nil {
		t.Fatal("expected second acquire to time out")
	}
}
