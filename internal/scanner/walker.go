// Package scanner enumerates files under monitored folders and classifies
// them by extension.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Directories that are never worth descending into.
var skipDirs = map[string]bool{
	"System Volume Information": true,
	"$RECYCLE.BIN":              true,
	"node_modules":              true,
	".git":                      true,
}

// WalkResult holds the entries found under a set of roots plus warnings for
// any subtree that could not be read. A warning never aborts the walk.
type WalkResult struct {
	Entries  []FileEntry
	Warnings []string
}

// Walk recursively enumerates files under each root. Missing roots and
// permission-denied subtrees are recorded as warnings and skipped. Entries
// for a given tree come back in lexical walk order; each call re-walks from
// scratch. Walking stops early only on context cancellation.
func Walk(ctx context.Context, roots []string) (*WalkResult, error) {
	result := &WalkResult{}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		info, err := os.Stat(root)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping root %s: %v", root, err))
			continue
		}
		if !info.IsDir() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping root %s: not a directory", root))
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", path, walkErr))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			name := d.Name()
			if d.IsDir() {
				if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return nil
			}
			// Symlinks are not followed; a link cycle cannot trap the walk.
			if !d.Type().IsRegular() {
				return nil
			}

			fi, err := d.Info()
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", path, err))
				return nil
			}

			result.Entries = append(result.Entries, FileEntry{
				Path:         path,
				Name:         name,
				Root:         root,
				Size:         fi.Size(),
				ModifiedTime: fi.ModTime(),
				Type:         Classify(name),
			})
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("walk %s: %v", root, err))
		}
	}

	return result, nil
}
