package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jsas4coding/tools-electron-app-generator/internal/config"
)

// IconName is the icon file name inside both the staging and install directories.
const IconName = "icon.png"

// AssetMode is applied to every file written into a staging directory.
const AssetMode os.FileMode = 0644

// ErrIconMissing is returned by CopyIcon when the icon file does not exist.
var ErrIconMissing = errors.New("icon not found")

// Manager owns the per-app staging directories under the build directory.
type Manager struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Prepare removes any leftover staging directory for appName and creates an empty one.
func (m *Manager) Prepare(appName string) (string, error) {
	dir := m.cfg.StageDir(appName)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("remove stale staging dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	return dir, nil
}

// WriteFile writes a rendered file into dir.
func (m *Manager) WriteFile(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), AssetMode); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Chmod(path, AssetMode)
}

// IconSource is where the icon referenced by a catalog entry is expected.
func (m *Manager) IconSource(iconRef string) string {
	return filepath.Join(m.cfg.IconsDir, iconRef+".png")
}

// CopyIcon copies the referenced icon into dir as IconName.
//
// A missing icon returns ErrIconMissing and nothing is copied. A file that does not
// sniff as PNG is still copied; the returned warning describes it.
func (m *Manager) CopyIcon(dir, iconRef string) (warning string, err error) {
	src := m.IconSource(iconRef)
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrIconMissing, src)
	} else if err != nil {
		return "", err
	}

	if mime, err := mimetype.DetectFile(src); err == nil && !mime.Is("image/png") {
		warning = fmt.Sprintf("icon %s looks like %s, not image/png", src, mime.String())
	}

	if err := CopyFile(src, filepath.Join(dir, IconName), AssetMode); err != nil {
		return warning, fmt.Errorf("copy icon: %w", err)
	}
	return warning, nil
}

// Remove deletes the staging directory and build log of appName.
func (m *Manager) Remove(appName string) error {
	if err := os.RemoveAll(m.cfg.StageDir(appName)); err != nil {
		return err
	}
	if err := os.Remove(m.cfg.BuildLog(appName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PruneStale removes staging directories and build logs left behind by apps that are
// no longer in keep. It returns the app names that were pruned.
func (m *Manager) PruneStale(keep []string) ([]string, error) {
	entries, err := os.ReadDir(m.cfg.BuildDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(keep))
	for _, k := range keep {
		wanted[k] = true
	}

	var pruned []string
	for _, e := range entries {
		if !e.IsDir() || wanted[e.Name()] {
			continue
		}
		if err := m.Remove(e.Name()); err != nil {
			return pruned, fmt.Errorf("prune %s: %w", e.Name(), err)
		}
		pruned = append(pruned, e.Name())
	}
	return pruned, nil
}

// CopyFile copies src to dst, truncating dst, and sets mode on the result.
func CopyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Chmod(mode); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
