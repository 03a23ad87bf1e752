// Package pipeline drives each catalog entry through render, stage, build, install
// and cleanup, one entry at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsas4coding/tools-electron-app-generator/internal/builder"
	"github.com/jsas4coding/tools-electron-app-generator/internal/catalog"
	"github.com/jsas4coding/tools-electron-app-generator/internal/config"
	"github.com/jsas4coding/tools-electron-app-generator/internal/installer"
	"github.com/jsas4coding/tools-electron-app-generator/internal/linker"
	"github.com/jsas4coding/tools-electron-app-generator/internal/render"
	"github.com/jsas4coding/tools-electron-app-generator/internal/staging"
)

// AppVersion is the version stamped into every generated package manifest.
const AppVersion = "1.0.0"

// State is where an entry is in its lifecycle.
type State int

const (
	StatePending State = iota
	StateStaged
	StateBuilt
	StateInstalled
	StateCleaned
	StateSkipped
	StateFailed
)

func (s State) String() string {
	return [...]string{
		"pending", "staged", "built", "installed", "cleaned", "skipped", "failed",
	}[s]
}

// ProgressMsg is emitted for every state transition and for warnings.
type ProgressMsg struct {
	App   catalog.App
	State State

	// Warning is set for non-fatal problems; State is then the current state.
	Warning string

	// Err is set when State is StateFailed.
	Err error

	// Path is the directory or file the transition produced, when there is one.
	Path string
}

// Reporter receives progress messages in order.
type Reporter interface {
	Progress(ProgressMsg)
}

// Summary lists app names by outcome, in processing order.
type Summary struct {
	Installed   []string
	Skipped     []string
	Failed      []string
	Interrupted bool
}

// OK reports whether the run finished without failed entries.
func (s Summary) OK() bool { return len(s.Failed) == 0 && !s.Interrupted }

// Runner wires the per-entry steps together.
type Runner struct {
	Config    *config.Config
	Renderer  *render.Renderer
	Staging   *staging.Manager
	Builder   builder.Builder
	Installer *installer.Installer
	Reporter  Reporter
}

// New builds a Runner whose components all share cfg.
func New(cfg *config.Config, r *render.Renderer, b builder.Builder, rep Reporter) *Runner {
	return &Runner{
		Config:    cfg,
		Renderer:  r,
		Staging:   staging.New(cfg),
		Builder:   b,
		Installer: installer.New(cfg),
		Reporter:  rep,
	}
}

// Run processes apps in order. A failing entry is reported and the next one starts;
// only ctx cancellation ends the run early.
func (r *Runner) Run(ctx context.Context, apps []catalog.App) Summary {
	var sum Summary
	for _, app := range apps {
		if ctx.Err() != nil {
			sum.Interrupted = true
			break
		}
		switch r.process(ctx, app) {
		case StateCleaned:
			sum.Installed = append(sum.Installed, app.AppName)
		case StateSkipped:
			sum.Skipped = append(sum.Skipped, app.AppName)
		default:
			sum.Failed = append(sum.Failed, app.AppName)
		}
	}
	if ctx.Err() != nil {
		sum.Interrupted = true
	}
	return sum
}

func (r *Runner) send(msg ProgressMsg) {
	if r.Reporter != nil {
		r.Reporter.Progress(msg)
	}
}

func (r *Runner) fail(app catalog.App, path string, err error) State {
	r.send(ProgressMsg{App: app, State: StateFailed, Err: err, Path: path})
	return StateFailed
}

func (r *Runner) warn(app catalog.App, state State, warning string) {
	r.send(ProgressMsg{App: app, State: state, Warning: warning})
}

// process runs one entry and returns its terminal state.
func (r *Runner) process(ctx context.Context, app catalog.App) State {
	if app.Skip {
		r.send(ProgressMsg{App: app, State: StateSkipped})
		return StateSkipped
	}
	r.send(ProgressMsg{App: app, State: StatePending})

	// Everything is rendered before touching the filesystem.
	files, err := r.Renderer.RenderAll(r.BuildContext(app))
	if err != nil {
		return r.fail(app, "", err)
	}

	stageDir, err := r.Staging.Prepare(app.AppName)
	if err != nil {
		return r.fail(app, "", err)
	}
	for _, name := range []string{render.PackageJSON, render.MainJS} {
		if err := r.Staging.WriteFile(stageDir, name, files[name]); err != nil {
			return r.fail(app, stageDir, err)
		}
	}

	icon := filepath.Join(stageDir, staging.IconName)
	warning, err := r.Staging.CopyIcon(stageDir, app.Icon)
	switch {
	case errors.Is(err, staging.ErrIconMissing):
		icon = ""
		r.warn(app, StatePending, fmt.Sprintf("icon not found for %s: %s", app.Name, r.Staging.IconSource(app.Icon)))
	case err != nil:
		return r.fail(app, stageDir, err)
	case warning != "":
		r.warn(app, StatePending, warning)
	}
	r.send(ProgressMsg{App: app, State: StateStaged, Path: stageDir})

	artifact, err := r.Builder.Build(ctx, stageDir)
	if err != nil {
		return r.fail(app, stageDir, fmt.Errorf("build: %w", err))
	}
	r.send(ProgressMsg{App: app, State: StateBuilt, Path: artifact})

	installDir, err := r.Installer.Install(app, artifact, icon)
	if err != nil {
		return r.fail(app, stageDir, fmt.Errorf("install: %w", err))
	}
	if _, err := r.Installer.WriteDesktopEntry(app, files[render.DesktopEntry]); err != nil {
		return r.fail(app, stageDir, fmt.Errorf("install: %w", err))
	}
	r.send(ProgressMsg{App: app, State: StateInstalled, Path: installDir})

	if r.Config.LinkDir != "" {
		if _, err := linker.Link(r.Config.ArtifactPath(app.AppName), r.Config.LinkDir, app.AppName); err != nil {
			r.warn(app, StateInstalled, err.Error())
		}
	}

	if err := r.Staging.Remove(app.AppName); err != nil {
		r.warn(app, StateInstalled, fmt.Sprintf("clean up %s: %v", stageDir, err))
	}
	r.send(ProgressMsg{App: app, State: StateCleaned, Path: installDir})
	return StateCleaned
}

// BuildContext returns the template values for app.
func (r *Runner) BuildContext(app catalog.App) render.Context {
	cfg := r.Config
	return render.Context{
		"app_name":         app.AppName,
		"product_name":     app.Name,
		"url":              app.URL,
		"description":      app.Comment(),
		"category":         app.Category,
		"locale":           cfg.Locale,
		"locale_env":       cfg.LocaleEnv(),
		"spellcheck_langs": strings.Join(cfg.SpellcheckLangs, ","),
		"electron_version": cfg.ElectronVersion,
		"app_version":      AppVersion,
		"exec":             r.Installer.ExecLine(app),
		"icon_path":        cfg.IconPath(app.AppName),
		"wm_class":         app.AppName,
	}
}
