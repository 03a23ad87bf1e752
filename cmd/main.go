package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	flag "github.com/spf13/pflag"

	"github.com/jsas4coding/tools-electron-app-generator/internal/builder"
	"github.com/jsas4coding/tools-electron-app-generator/internal/catalog"
	"github.com/jsas4coding/tools-electron-app-generator/internal/config"
	"github.com/jsas4coding/tools-electron-app-generator/internal/extractor"
	gh "github.com/jsas4coding/tools-electron-app-generator/internal/github"
	"github.com/jsas4coding/tools-electron-app-generator/internal/pipeline"
	"github.com/jsas4coding/tools-electron-app-generator/internal/render"
	"github.com/jsas4coding/tools-electron-app-generator/internal/report"
	"github.com/jsas4coding/tools-electron-app-generator/internal/staging"
	"github.com/jsas4coding/tools-electron-app-generator/internal/system"
)

// Exit statuses.
const (
	exitOK      = 0
	exitFatal   = 1
	exitPartial = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	root := flag.StringP("root", "r", "", "workspace directory holding apps.json, icons/ and templates/ (default: working directory)")
	settings := flag.StringP("config", "c", "", "settings file (default: <root>/"+config.DefaultFile+" if present)")
	verbose := flag.BoolP("verbose", "v", false, "stream packaging output and debug logs to stderr")
	only := flag.StringSlice("only", nil, "process only these app_name entries")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("[verbose] ")
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(config.Options{Root: *root, File: *settings})
	if err != nil {
		return fatal("loading config", err)
	}
	cfg.Verbose = *verbose
	if flag.NArg() > 0 {
		if cfg.Catalog, err = filepath.Abs(flag.Arg(0)); err != nil {
			return fatal("resolving catalog path", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := system.Validate(ctx, cfg, system.DefaultChecks()); err != nil {
		return fatal("checking environment", err)
	}
	if err := system.EnsureBaseDirs(cfg); err != nil {
		return fatal("creating base dirs", err)
	}

	lock := flock.New(cfg.LockFile())
	locked, err := lock.TryLock()
	if err != nil {
		return fatal("locking workspace", err)
	}
	if !locked {
		return fatal("locking workspace", fmt.Errorf("another run holds %s", cfg.LockFile()))
	}
	defer lock.Unlock()

	if cfg.ElectronVersion, err = gh.NewClient("", os.Getenv("GITHUB_TOKEN")).ResolveElectron(ctx, cfg.ElectronVersion); err != nil {
		return fatal("resolving Electron version", err)
	}
	log.Printf("electron=%s locale=%s spellcheck=%v", cfg.ElectronVersion, cfg.Locale, cfg.SpellcheckLangs)

	if err := unpackIconPack(cfg); err != nil {
		return fatal("unpacking icon pack", err)
	}

	all, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return fatal("loading catalog", err)
	}
	apps, err := catalog.Filter(all, *only)
	if err != nil {
		return fatal("selecting apps", err)
	}

	pruned, err := staging.New(cfg).PruneStale(catalog.Names(all))
	if err != nil {
		return fatal("pruning stale staging dirs", err)
	}
	for _, name := range pruned {
		log.Printf("pruned stale staging dir for %s", name)
	}

	renderer, err := render.New(cfg.TemplatesDir)
	if err != nil {
		return fatal("loading templates", err)
	}

	var echo io.Writer
	if cfg.Verbose {
		echo = os.Stderr
	}
	buildLog := builder.FileLog(func(stageDir string) string {
		return cfg.BuildLog(filepath.Base(stageDir))
	}, echo)
	b := &builder.Command{Args: cfg.BuildCommand, Glob: cfg.ArtifactGlob, Log: buildLog}

	console := report.NewConsole(os.Stdout, cfg.Verbose)
	sum := pipeline.New(cfg, renderer, b, console).Run(ctx, apps)
	console.Summary(sum)

	switch {
	case sum.Interrupted:
		return exitFatal
	case !sum.OK():
		return exitPartial
	}
	return exitOK
}

func unpackIconPack(cfg *config.Config) error {
	if cfg.IconPack == "" {
		return nil
	}
	if _, err := os.Stat(cfg.IconPack); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	n, err := extractor.Extract(cfg.IconPack, cfg.IconsDir)
	if err != nil {
		return err
	}
	log.Printf("unpacked %d icons from %s", n, cfg.IconPack)
	return nil
}

func fatal(doing string, err error) int {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", doing, err)
	return exitFatal
}
