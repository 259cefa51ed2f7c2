// Package scan finds the photos under a directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// skipFolders are system folders that never hold user photos.
var skipFolders = map[string]bool{
	".Spotlight-V100": true,
	".fseventsd":      true,
	".Trashes":        true,
	".stfolder":       true,
}

// Files walks root recursively and returns every file with a supported
// extension. Any walk error aborts the scan.
func Files(root string) ([]string, error) {
	var files []string
	err := walk(root, func(path string) {
		if Supported(path) {
			files = append(files, path)
		}
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Index maps each file name under root to all paths carrying it, in walk
// order.
func Index(root string) (map[string][]string, error) {
	index := make(map[string][]string)
	err := walk(root, func(path string) {
		name := filepath.Base(path)
		index[name] = append(index[name], path)
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

func walk(root string, visit func(path string)) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %w", err)
		}
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %q: %w", path, err)
		}
		if d.IsDir() {
			if path != root && skipFolders[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		visit(path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error walking the path %s: %w", root, err)
	}
	return nil
}
