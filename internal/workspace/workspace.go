// Package workspace isolates each Attempt's verification in its own copy of
// the project tree: Attempts are generated file changes, not commits, so
// verification works against a plain directory copy rather than shared git
// state or a git worktree.
package workspace

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/boshu2/manifest/internal/types"
)

// estimatedMeanWorkspaceBytes sizes the disk-cap semaphore when the caller
// has not observed an actual mean yet.
const estimatedMeanWorkspaceBytes = 64 << 20 // 64 MiB

// Manager copies a project tree into per-attempt workspaces, applies file
// changes, and tears the copy down afterward.
type Manager struct {
	ProjectRoot string
	Root        string // <base>/workspaces
	ExcludeDirs map[string]struct{}

	cap *diskCap
}

// New constructs a Manager. diskCapBytes bounds total estimated disk use
// across concurrently live workspaces; acquireDeadline bounds how long a
// caller waits for headroom.
func New(projectRoot, workspacesRoot string, excludeDirs []string, diskCapBytes int64, acquireDeadline time.Duration) *Manager {
	excl := make(map[string]struct{}, len(excludeDirs))
	for _, d := range excludeDirs {
		excl[d] = struct{}{}
	}
	slots := int(diskCapBytes / estimatedMeanWorkspaceBytes)
	if slots < 1 {
		slots = 1
	}
	return &Manager{
		ProjectRoot: projectRoot,
		Root:        workspacesRoot,
		ExcludeDirs: excl,
		cap:         newDiskCap(slots, acquireDeadline),
	}
}

// WithWorkspace creates a workspace for attemptID, applies changes (and the
// test suite file, if non-empty), invokes fn with the workspace path, and
// removes the workspace afterward regardless of outcome — including on a
// panic, which is recovered, cleaned up after, and re-thrown.
func (m *Manager) WithWorkspace(ctx context.Context, attemptID string, changes []types.FileChange, testSuiteContent, testSuitePath string, fn func(path string) error) (err error) {
	if err := m.cap.acquire(ctx); err != nil {
		return err
	}
	defer m.cap.release()

	path := filepath.Join(m.Root, attemptID)
	if err := m.copyTree(path); err != nil {
		_ = os.RemoveAll(path)
		return err
	}

	var panicked any
	defer func() {
		if p := recover(); p != nil {
			panicked = p
		}
		_ = os.RemoveAll(path)
		if panicked != nil {
			panic(panicked)
		}
	}()

	if err := applyChanges(path, changes); err != nil {
		return err
	}
	if testSuiteContent != "" && testSuitePath != "" {
		if err := writeFile(filepath.Join(path, testSuitePath), testSuiteContent); err != nil {
			return err
		}
	}
	return fn(path)
}

// copyTree walks ProjectRoot and copies every file not under an excluded
// directory name into dst, preserving relative structure and permissions.
func (m *Manager) copyTree(dst string) error {
	info, err := os.Stat(m.ProjectRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrSourceNotDir
	}
	return filepath.WalkDir(m.ProjectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(m.ProjectRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dst, 0o755)
		}
		if d.IsDir() {
			if _, excluded := m.ExcludeDirs[d.Name()]; excluded {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		return copyFile(path, filepath.Join(dst, rel))
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode())
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}

func applyChanges(root string, changes []types.FileChange) error {
	for _, fc := range changes {
		full := filepath.Join(root, fc.Path)
		switch fc.Action {
		case types.ActionDelete:
			if err := os.RemoveAll(full); err != nil {
				return err
			}
		case types.ActionCreate, types.ActionModify:
			if err := writeFile(full, fc.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// DebugRoot is the sibling directory under which PreserveDebugCopy saves a
// snapshot of a workspace whose Verification failed. Unlike Root, DebugRoot
// is never swept or auto-cleaned on process start; an operator clears it
// manually once done inspecting a failure.
func (m *Manager) DebugRoot() string {
	return filepath.Join(filepath.Dir(m.Root), "failed-workspaces")
}

// PreserveDebugCopy copies the live workspace at path into DebugRoot keyed
// by attemptID, for post-mortem inspection of a failed Verification. This
// never substitutes for tearing the live workspace under Root down — that
// removal is unconditional on every exit path regardless of whether a
// debug copy was requested or whether it succeeds.
func (m *Manager) PreserveDebugCopy(attemptID, path string) error {
	return copyDirRecursive(path, filepath.Join(m.DebugRoot(), attemptID))
}

func copyDirRecursive(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

// Sweep removes leftover workspace directories from a prior crash: every
// subdirectory of Root that resolves inside Root is removed. It does not
// check for live WithWorkspace calls, so it is run at process start.
func (m *Manager) Sweep(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.Root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(m.Root, e.Name())
		if !isWithinRoot(m.Root, path) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, err
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}

// isWithinRoot guards against a symlink or crafted name escaping Root before
// a recursive delete runs.
func isWithinRoot(root, path string) bool {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		resolvedRoot = root
	}
	resolvedPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolvedPath = path
	}
	rel, err := filepath.Rel(resolvedRoot, resolvedPath)
	if err != nil {
		return false
	}
	return rel != ".." && !filepathHasDotDotPrefix(rel)
}

func filepathHasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}
