package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
	"github.com/pkg/errors"
)

// ReadSources reads every source file of a known language found under the provided directories. Directories are
// relative to root, and so are the paths of the returned sources. Hidden directories are skipped.
func ReadSources(root string, dirs []string) (types.Sources, error) {
	sources := make(types.Sources)
	for _, dir := range dirs {
		dirPath := dir
		if !filepath.IsAbs(dirPath) {
			dirPath = filepath.Join(root, dirPath)
		}
		info, err := os.Stat(dirPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read source directory %s", dir)
		}
		if !info.IsDir() {
			return nil, errors.Errorf("source path %s is not a directory", dir)
		}

		err = filepath.WalkDir(dirPath, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if path != dirPath && strings.HasPrefix(entry.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := types.LanguageFromPath(path); !ok {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			source := types.NewSource(utils.RelativeSlashPath(root, path), content)
			sources[source.Path] = source
			return nil
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return sources, nil
}

// sourceLoader returns a function reading project-relative files on demand, used to load imported library files.
func sourceLoader(root string) func(path string) (*types.Source, bool) {
	return func(path string) (*types.Source, bool) {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		if err != nil {
			return nil, false
		}
		return types.NewSource(path, content), true
	}
}
