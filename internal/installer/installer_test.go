package installer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsas4coding/tools-electron-app-generator/internal/catalog"
	"github.com/jsas4coding/tools-electron-app-generator/internal/config"
	"github.com/jsas4coding/tools-electron-app-generator/internal/installer"
)

var slack = catalog.App{AppName: "slack", Name: "Slack", URL: "https://app.slack.com", Icon: "slack", Category: "Network"}

func setup(t *testing.T) (*installer.Installer, *config.Config, string, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Defaults()
	cfg.Root = root
	cfg.OptDir = filepath.Join(root, "opt")
	cfg.DesktopDir = filepath.Join(root, "desktop-entries")

	src := t.TempDir()
	artifact := filepath.Join(src, "Slack-1.0.0.AppImage")
	icon := filepath.Join(src, "icon.png")
	require.NoError(t, os.WriteFile(artifact, []byte("bundle"), 0o644))
	require.NoError(t, os.WriteFile(icon, []byte("png"), 0o600))

	return installer.New(&cfg), &cfg, artifact, icon
}

func TestInstall_exactlyTwoFiles(t *testing.T) {
	inst, cfg, artifact, icon := setup(t)

	dir, err := inst.Install(slack, artifact, icon)
	require.NoError(t, err)
	assert.Equal(t, cfg.InstallDir("slack"), dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"slack.AppImage", "icon.png"}, names)

	info, err := os.Stat(cfg.ArtifactPath("slack"))
	require.NoError(t, err)
	assert.Equal(t, installer.ArtifactMode, info.Mode().Perm())
}

func TestInstall_replacesPreviousInstall(t *testing.T) {
	inst, cfg, artifact, icon := setup(t)

	require.NoError(t, os.MkdirAll(cfg.InstallDir("slack"), 0o755))
	leftover := filepath.Join(cfg.InstallDir("slack"), "old-version.AppImage")
	require.NoError(t, os.WriteFile(leftover, []byte("old"), 0o755))

	_, err := inst.Install(slack, artifact, icon)
	require.NoError(t, err)
	assert.NoFileExists(t, leftover)
}

func TestInstall_withoutIconFails(t *testing.T) {
	inst, cfg, artifact, icon := setup(t)

	_, err := inst.Install(slack, artifact, icon)
	require.NoError(t, err)

	_, err = inst.Install(slack, artifact, "")
	require.ErrorIs(t, err, installer.ErrNoIcon)
	// the previous installation is left alone
	assert.FileExists(t, cfg.ArtifactPath("slack"))
	assert.FileExists(t, cfg.IconPath("slack"))
}

func TestInstall_withoutIconCreatesNothing(t *testing.T) {
	inst, cfg, artifact, _ := setup(t)

	_, err := inst.Install(slack, artifact, "")
	require.ErrorIs(t, err, installer.ErrNoIcon)
	assert.NoDirExists(t, cfg.InstallDir("slack"))
}

func TestInstall_missingArtifact(t *testing.T) {
	inst, _, _, icon := setup(t)
	_, err := inst.Install(slack, "/does/not/exist.AppImage", icon)
	assert.Error(t, err)
}

func TestExecLine(t *testing.T) {
	inst, cfg, _, _ := setup(t)
	assert.Equal(t, cfg.ArtifactPath("slack")+" --no-sandbox", inst.ExecLine(slack))

	cfg.UserDataDir = "/home/me/.webapps"
	assert.Equal(t, "env APP_USERDATA=/home/me/.webapps "+cfg.ArtifactPath("slack")+" --no-sandbox", inst.ExecLine(slack))
}

func TestWriteDesktopEntry_overwrites(t *testing.T) {
	inst, cfg, _, _ := setup(t)

	_, err := inst.WriteDesktopEntry(slack, "first\nsecond\n")
	require.NoError(t, err)
	path, err := inst.WriteDesktopEntry(slack, "third\n")
	require.NoError(t, err)
	assert.Equal(t, cfg.DesktopFile("slack"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "third\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, installer.DesktopMode, info.Mode().Perm())
}
