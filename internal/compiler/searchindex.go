package compiler

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// sourceIndex is an in-memory inverted index mapping lowercase terms to the
// set of project-relative file paths that contain them, built over the
// project tree once per analyze step and used to cross-check the AI's
// relevant_files answer against what the files on disk actually mention.
type sourceIndex struct {
	terms map[string]map[string]bool
}

func newSourceIndex() *sourceIndex {
	return &sourceIndex{terms: make(map[string]map[string]bool)}
}

// buildSourceIndex walks root, skipping excluded directories and binary
// extensions, and indexes every remaining file's tokens.
func buildSourceIndex(root string, excludeDirs, binaryExt map[string]struct{}, maxBytes int64) (*sourceIndex, error) {
	idx := newSourceIndex()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if _, excluded := excludeDirs[d.Name()]; excluded && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, isBinary := binaryExt[filepath.Ext(path)]; isBinary {
			return nil
		}
		info, err := d.Info()
		if err != nil || (maxBytes > 0 && info.Size() > maxBytes) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		return idx.indexFile(path, rel)
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *sourceIndex) indexFile(absPath, relPath string) error {
	f, err := os.Open(absPath)
	if err != nil {
		return nil // unreadable files are skipped, not fatal
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1<<20)

	seen := make(map[string]bool)
	for scanner.Scan() {
		for _, term := range tokenize(scanner.Text()) {
			if seen[term] {
				continue
			}
			seen[term] = true
			if idx.terms[term] == nil {
				idx.terms[term] = make(map[string]bool)
			}
			idx.terms[term][relPath] = true
		}
	}
	return nil
}

// search returns the paths matching the most query terms, most-matched
// first, ties broken lexically for deterministic output.
func (idx *sourceIndex) search(query string, limit int) []string {
	scores := make(map[string]int)
	for _, term := range tokenize(query) {
		for path := range idx.terms[term] {
			scores[path]++
		}
	}
	paths := make([]string, 0, len(scores))
	for p := range scores {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if scores[paths[i]] != scores[paths[j]] {
			return scores[paths[i]] > scores[paths[j]]
		}
		return paths[i] < paths[j]
	})
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return paths
}

// tokenize splits text into lowercase word tokens, stripping punctuation and
// discarding very short (<2 char) tokens.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	})
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
