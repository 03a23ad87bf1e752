package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	version "github.com/hashicorp/go-version"
	"golang.org/x/sys/unix"

	"github.com/jsas4coding/tools-electron-app-generator/internal/config"
)

// Checks bundles the probes Validate relies on so tests can substitute them.
type Checks struct {
	// Euid returns the effective user id.
	Euid func() int

	// GoVersion returns the runtime version, e.g. "go1.24.2".
	GoVersion func() string

	// NodeVersion returns the output of `node --version`.
	NodeVersion func(ctx context.Context) (string, error)

	// LookPath reports whether a command is on PATH.
	LookPath func(string) (string, error)
}

// DefaultChecks probes the real process and environment.
func DefaultChecks() Checks {
	return Checks{
		Euid:        unix.Geteuid,
		GoVersion:   runtime.Version,
		NodeVersion: nodeVersion,
		LookPath:    exec.LookPath,
	}
}

func nodeVersion(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "node", "--version").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Validate checks the run preconditions: not root, a recent enough Go runtime,
// Node.js at or above the required major version, and the packaging command on PATH.
func Validate(ctx context.Context, cfg *config.Config, c Checks) error {
	if c.Euid() == 0 {
		return fmt.Errorf("do not run as root — install locations are per-user")
	}

	if err := checkGo(c.GoVersion(), cfg.MinGoVersion); err != nil {
		return err
	}

	raw, err := c.NodeVersion(ctx)
	if err != nil {
		return fmt.Errorf("Node.js is not installed or not found in PATH: %w", err)
	}
	major, err := MajorVersion(raw)
	if err != nil {
		return fmt.Errorf("parse Node.js version: %w", err)
	}
	if major < cfg.NodeMajorVersion {
		return fmt.Errorf("Node.js v%d+ required, found %s", cfg.NodeMajorVersion, strings.TrimSpace(raw))
	}

	if missing := CheckCommands(c.LookPath, []string{cfg.BuildCommand[0]}); len(missing) > 0 {
		return fmt.Errorf("required command not found in PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkGo(runtimeVersion, minimum string) error {
	have, err := version.NewVersion(strings.TrimPrefix(runtimeVersion, "go"))
	if err != nil {
		// devel builds report e.g. "devel go1.25-abcdef"; nothing to compare.
		return nil
	}
	want, err := version.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("parse min_go_version %q: %w", minimum, err)
	}
	if have.LessThan(want) {
		return fmt.Errorf("Go runtime %s+ required, built with %s", minimum, runtimeVersion)
	}
	return nil
}

// MajorVersion extracts the major component of a version string such as "v22.3.0\n".
func MajorVersion(raw string) (int, error) {
	v, err := version.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return v.Segments()[0], nil
}

// CheckCommands returns the commands that lookPath cannot find.
func CheckCommands(lookPath func(string) (string, error), commands []string) []string {
	var missing []string
	for _, c := range commands {
		if _, err := lookPath(c); err != nil {
			missing = append(missing, c)
		}
	}
	return missing
}

// EnsureBaseDirs creates the build, install and desktop entry directories (and the
// user-data directory when configured) and checks that each is writable.
func EnsureBaseDirs(cfg *config.Config) error {
	dirs := []string{cfg.BuildDir, cfg.OptDir, cfg.DesktopDir}
	if cfg.UserDataDir != "" {
		dirs = append(dirs, cfg.UserDataDir)
	}
	if cfg.LinkDir != "" {
		dirs = append(dirs, cfg.LinkDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		if err := unix.Access(dir, unix.W_OK); err != nil {
			return fmt.Errorf("%s is not writable: %w", dir, err)
		}
	}
	return nil
}
