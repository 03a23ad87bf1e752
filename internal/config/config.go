package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/imdario/mergo"
	"github.com/spf13/cast"
)

// DefaultFile is the settings file looked up in the workspace root when none is given.
const DefaultFile = "webapps.toml"

// Environment variables recognised by Load.
const (
	EnvNodeMajorVersion = "REQUIRED_NODE_MAJOR_VERSION"
	EnvElectronVersion  = "REQUIRED_ELECTRON_VERSION"
	EnvLocale           = "APP_LANG"
	EnvSpellcheckLangs  = "APP_SPELLCHECK_LANGS"
	EnvUserData         = "APP_USERDATA"
	EnvLinkDir          = "WEBAPPS_LINK_DIR"
)

// Config is built once at startup and passed to every component.
type Config struct {
	Root string `toml:"-"`

	Catalog      string `toml:"catalog"`
	IconsDir     string `toml:"icons_dir"`
	IconPack     string `toml:"icon_pack"`
	TemplatesDir string `toml:"templates_dir"`
	BuildDir     string `toml:"build_dir"`
	OptDir       string `toml:"opt_dir"`
	DesktopDir   string `toml:"desktop_dir"`
	LinkDir      string `toml:"link_dir"`
	UserDataDir  string `toml:"userdata_dir"`

	BuildCommand []string `toml:"build_command"`
	ArtifactGlob string   `toml:"artifact_glob"`

	NodeMajorVersion int    `toml:"node_major_version"`
	MinGoVersion     string `toml:"min_go_version"`
	ElectronVersion  string `toml:"electron_version"`

	Locale          string   `toml:"locale"`
	SpellcheckLangs []string `toml:"spellcheck_langs"`

	Verbose bool `toml:"-"`
}

// Options controls where Load looks for settings.
type Options struct {
	// Root is the workspace directory; relative paths resolve against it.
	// Empty means the working directory.
	Root string

	// File is an explicit settings file. When empty, DefaultFile inside Root is
	// used if it exists.
	File string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Defaults returns the built-in configuration, before files and environment.
func Defaults() Config {
	return Config{
		Catalog:          "apps.json",
		IconsDir:         "icons",
		IconPack:         "icons.tar.xz",
		TemplatesDir:     "templates",
		BuildDir:         "build",
		OptDir:           "opt",
		DesktopDir:       "desktop-entries",
		BuildCommand:     []string{"npx", "electron-builder", "--linux", "AppImage"},
		ArtifactGlob:     "*.AppImage",
		NodeMajorVersion: 22,
		MinGoVersion:     "1.24.2",
		ElectronVersion:  "36.0.0",
		Locale:           "pt-BR",
		SpellcheckLangs:  []string{"en-US", "pt-BR"},
	}
}

// Load layers defaults, the settings file and the environment, in that order of
// increasing priority, and resolves all paths against the workspace root.
func Load(opts Options) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	cfg := Defaults()

	fileCfg, err := readFile(root, opts.File)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge settings file: %w", err)
	}

	envCfg, err := fromEnv(getenv)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&cfg, envCfg, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge environment: %w", err)
	}

	cfg.Root = root
	cfg.resolvePaths()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(root, path string) (Config, error) {
	var fileCfg Config
	required := path != ""
	if path == "" {
		path = DefaultFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return fileCfg, nil
}

func fromEnv(getenv func(string) string) (Config, error) {
	var c Config
	if v := strings.TrimSpace(getenv(EnvNodeMajorVersion)); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s must be a positive integer, got %q", EnvNodeMajorVersion, v)
		}
		c.NodeMajorVersion = n
	}
	c.ElectronVersion = strings.TrimSpace(getenv(EnvElectronVersion))
	c.Locale = strings.TrimSpace(getenv(EnvLocale))
	c.SpellcheckLangs = SplitList(getenv(EnvSpellcheckLangs))
	c.UserDataDir = strings.TrimSpace(getenv(EnvUserData))
	c.LinkDir = strings.TrimSpace(getenv(EnvLinkDir))
	return c, nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) resolvePaths() {
	for _, p := range []*string{
		&c.Catalog, &c.IconsDir, &c.IconPack, &c.TemplatesDir,
		&c.BuildDir, &c.OptDir, &c.DesktopDir, &c.LinkDir, &c.UserDataDir,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.Root, *p)
		}
	}
}

func (c *Config) validate() error {
	var errs []string
	if len(c.BuildCommand) == 0 || c.BuildCommand[0] == "" {
		errs = append(errs, "build_command is required")
	}
	if c.ArtifactGlob == "" {
		errs = append(errs, "artifact_glob is required")
	} else if _, err := filepath.Match(c.ArtifactGlob, ""); err != nil {
		errs = append(errs, fmt.Sprintf("artifact_glob %q: %v", c.ArtifactGlob, err))
	}
	if c.NodeMajorVersion <= 0 {
		errs = append(errs, "node_major_version must be positive")
	}
	if c.ElectronVersion == "" {
		errs = append(errs, "electron_version is required")
	}
	if c.Locale == "" {
		errs = append(errs, "locale is required")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, ", "))
	}
	return nil
}

// LocaleEnv is the value exported as LANG/LC_ALL by the launcher.
func (c *Config) LocaleEnv() string { return c.Locale + ".UTF-8" }

// StageDir is the per-app staging directory.
func (c *Config) StageDir(appName string) string { return filepath.Join(c.BuildDir, appName) }

// BuildLog is where the packaging tool's output for appName is captured.
func (c *Config) BuildLog(appName string) string {
	return filepath.Join(c.BuildDir, appName+".log")
}

// InstallDir is the persistent per-app installation directory.
func (c *Config) InstallDir(appName string) string { return filepath.Join(c.OptDir, appName) }

// ArtifactPath is the installed bundle for appName.
func (c *Config) ArtifactPath(appName string) string {
	return filepath.Join(c.InstallDir(appName), appName+".AppImage")
}

// IconPath is the installed icon for appName.
func (c *Config) IconPath(appName string) string {
	return filepath.Join(c.InstallDir(appName), "icon.png")
}

// DesktopFile is the desktop entry written for appName.
func (c *Config) DesktopFile(appName string) string {
	return filepath.Join(c.DesktopDir, appName+".desktop")
}

// LockFile guards a workspace against concurrent runs.
func (c *Config) LockFile() string { return filepath.Join(c.BuildDir, ".lock") }
