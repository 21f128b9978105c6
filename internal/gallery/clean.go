// Package gallery maintains the on-disk reference image gallery. Folder
// names double as identity labels, so filenames are kept ASCII-only and
// space-free to survive multipart uploads and HTTP path handling.
package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Pérez" -> "Perez").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// CleanFilename normalizes a gallery file or folder name: diacritics
// stripped, spaces replaced with underscores, anything outside
// [A-Za-z0-9._-] dropped.
func CleanFilename(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanDirectory renames every entry under root whose name is not already
// clean. Subdirectories are walked depth-first so children are renamed
// before their parent folder moves. Returns the number of renames.
func CleanDirectory(root string) (int, error) {
	renamed := 0

	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("read gallery directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if entry.IsDir() {
			n, err := CleanDirectory(filepath.Join(root, name))
			if err != nil {
				return renamed, err
			}
			renamed += n
		}

		clean := CleanFilename(name)
		if clean == name || clean == "" {
			continue
		}

		oldPath := filepath.Join(root, name)
		newPath := filepath.Join(root, clean)
		if _, err := os.Stat(newPath); err == nil {
			// Target exists, leave the entry alone rather than clobber it.
			continue
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return renamed, fmt.Errorf("rename %q: %w", name, err)
		}
		renamed++
	}

	return renamed, nil
}
