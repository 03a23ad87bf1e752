package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsas4coding/tools-electron-app-generator/internal/catalog"
	"github.com/jsas4coding/tools-electron-app-generator/internal/config"
	"github.com/jsas4coding/tools-electron-app-generator/internal/staging"
)

const (
	ArtifactMode os.FileMode = 0755
	DesktopMode  os.FileMode = 0644
)

// ErrNoIcon is returned by Install when no icon was staged for the app.
var ErrNoIcon = errors.New("no icon staged")

// Installer replaces per-app installation directories and desktop entries.
type Installer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Installer {
	return &Installer{cfg: cfg}
}

// ExecLine is the desktop entry launch command for app. When a user-data directory is
// configured the bundle is started through env with APP_USERDATA set.
func (i *Installer) ExecLine(app catalog.App) string {
	exec := i.cfg.ArtifactPath(app.AppName) + " --no-sandbox"
	if i.cfg.UserDataDir != "" {
		exec = "env " + config.EnvUserData + "=" + i.cfg.UserDataDir + " " + exec
	}
	return exec
}

// Install deletes any previous installation of app, then copies the artifact and the
// staged icon into a fresh directory. An empty icon fails with ErrNoIcon before the
// previous installation is touched. It returns the installation directory.
func (i *Installer) Install(app catalog.App, artifact, icon string) (string, error) {
	if icon == "" {
		return "", fmt.Errorf("%w for %s", ErrNoIcon, app.AppName)
	}
	dir := i.cfg.InstallDir(app.AppName)

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("remove previous install: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create install dir: %w", err)
	}

	if err := staging.CopyFile(artifact, i.cfg.ArtifactPath(app.AppName), ArtifactMode); err != nil {
		return "", fmt.Errorf("copy artifact: %w", err)
	}
	if err := staging.CopyFile(icon, i.cfg.IconPath(app.AppName), staging.AssetMode); err != nil {
		return "", fmt.Errorf("copy icon: %w", err)
	}
	return dir, nil
}

// WriteDesktopEntry overwrites the desktop entry file of app with content.
func (i *Installer) WriteDesktopEntry(app catalog.App, content string) (string, error) {
	path := i.cfg.DesktopFile(app.AppName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), DesktopMode); err != nil {
		return "", fmt.Errorf("write desktop entry: %w", err)
	}
	if err := os.Chmod(path, DesktopMode); err != nil {
		return "", err
	}
	return path, nil
}
