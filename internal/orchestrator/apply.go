package orchestrator

import (
	"os"
	"path/filepath"

	"github.com/boshu2/manifest/internal/types"
)

// applyChangesAtomically applies changes to the real project tree under
// root as a single all-or-nothing step: every touched path's pre-image
// (absent marker if it did not exist) is captured first, each file is
// written to a temp path and renamed into place, and if any write fails
// every already-applied change is rolled back from the captured pre-images.
func applyChangesAtomically(root string, changes []types.FileChange) error {
	preimages := make(map[string]*string, len(changes))
	for _, fc := range changes {
		full := filepath.Join(root, fc.Path)
		data, err := os.ReadFile(full)
		if err != nil {
			if os.IsNotExist(err) {
				preimages[fc.Path] = nil
				continue
			}
			return err
		}
		s := string(data)
		preimages[fc.Path] = &s
	}

	applied := make([]types.FileChange, 0, len(changes))
	for _, fc := range changes {
		if err := applyOne(root, fc); err != nil {
			rollback(root, applied, preimages)
			return err
		}
		applied = append(applied, fc)
	}
	return nil
}

func applyOne(root string, fc types.FileChange) error {
	full := filepath.Join(root, fc.Path)
	switch fc.Action {
	case types.ActionDelete:
		return os.RemoveAll(full)
	default:
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		tmp := full + ".manifest-tmp"
		if err := os.WriteFile(tmp, []byte(fc.Content), 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, full)
	}
}

// rollback restores every already-applied change's pre-image, removing
// files that did not previously exist.
func rollback(root string, applied []types.FileChange, preimages map[string]*string) {
	for _, fc := range applied {
		full := filepath.Join(root, fc.Path)
		pre := preimages[fc.Path]
		if pre == nil {
			_ = os.Remove(full)
			continue
		}
		_ = os.WriteFile(full, []byte(*pre), 0o644)
	}
}
