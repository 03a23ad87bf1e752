// Package linker exposes installed bundles on a bin directory through symlinks.
package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrOccupied means the link name is taken by something that is not a symlink.
var ErrOccupied = errors.New("link target occupied")

// Link points dir/name at target, replacing an existing symlink of that name.
// A regular file or directory at dir/name is left alone and ErrOccupied is returned.
func Link(target, dir, name string) (string, error) {
	link := filepath.Join(dir, name)

	info, err := os.Lstat(link)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink == 0:
		return "", fmt.Errorf("%w: %s is not a symlink — remove it manually", ErrOccupied, link)
	case err == nil:
		if current, err := os.Readlink(link); err == nil && current == target {
			return link, nil
		}
		if err := os.Remove(link); err != nil {
			return "", fmt.Errorf("remove existing symlink %s: %w", link, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	if err := os.Symlink(target, link); err != nil {
		return "", fmt.Errorf("create symlink %s -> %s: %w", link, target, err)
	}
	return link, nil
}
