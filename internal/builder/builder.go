// Package builder runs the external packaging tool against a staging directory and
// locates the bundle it produced.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// DistDir is the subdirectory of the staging directory the packaging tool writes to.
const DistDir = "dist"

// ErrNoArtifact means the packaging tool exited cleanly but left no bundle behind.
var ErrNoArtifact = errors.New("no artifact produced")

// Builder packages a staged app and returns the path of the produced artifact.
type Builder interface {
	Build(ctx context.Context, stageDir string) (artifact string, err error)
}

// ExitError reports a packaging command that exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Command runs an external packaging command, e.g. `npx electron-builder --linux AppImage`,
// with its working directory set to the staging directory. It waits for the command
// to exit; only ctx cancellation stops it early.
type Command struct {
	Args []string

	// Glob matches the artifact inside DistDir.
	Glob string

	// Log, when set, returns the writer that receives the command's combined output
	// for a staging directory. The writer is closed after the command exits if it
	// implements io.Closer.
	Log func(stageDir string) (io.Writer, error)
}

// Build implements Builder.
func (c *Command) Build(ctx context.Context, stageDir string) (string, error) {
	if len(c.Args) == 0 {
		return "", errors.New("no build command configured")
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = stageDir

	if c.Log != nil {
		w, err := c.Log(stageDir)
		if err != nil {
			return "", fmt.Errorf("open build log: %w", err)
		}
		if closer, ok := w.(io.Closer); ok {
			defer closer.Close()
		}
		cmd.Stdout = w
		cmd.Stderr = w
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("build interrupted: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExitError{Command: strings.Join(c.Args, " "), ExitCode: exitErr.ExitCode(), Err: err}
		}
		return "", fmt.Errorf("run %s: %w", c.Args[0], err)
	}

	return FindArtifact(stageDir, c.Glob)
}

// FindArtifact returns the first file in stageDir/dist matching glob, in lexical order.
func FindArtifact(stageDir, glob string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(stageDir, DistDir, glob))
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", DistDir, err)
	}
	sort.Strings(matches)
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w in %s matching %s", ErrNoArtifact, filepath.Join(stageDir, DistDir), glob)
}

type logFile struct {
	io.Writer
	io.Closer
}

// FileLog returns a Command.Log func that appends output to logPath(stageDir),
// truncating it first, and also copies it to echo when echo is non-nil.
func FileLog(logPath func(stageDir string) string, echo io.Writer) func(string) (io.Writer, error) {
	return func(stageDir string) (io.Writer, error) {
		f, err := os.OpenFile(logPath(stageDir), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, err
		}
		if echo == nil {
			return f, nil
		}
		return logFile{Writer: io.MultiWriter(f, echo), Closer: f}, nil
	}
}
