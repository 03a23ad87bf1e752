package render_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsas4coding/tools-electron-app-generator/internal/render"
)

func fullContext() render.Context {
	return render.Context{
		"app_name":         "whatsapp",
		"product_name":     "WhatsApp",
		"url":              "https://web.whatsapp.com",
		"description":      "Chat with friends",
		"category":         "Network",
		"locale":           "pt-BR",
		"locale_env":       "pt-BR.UTF-8",
		"spellcheck_langs": "en-US,pt-BR",
		"electron_version": "36.0.0",
		"app_version":      "1.0.0",
		"exec":             "/opt/whatsapp/whatsapp.AppImage --no-sandbox",
		"icon_path":        "/opt/whatsapp/icon.png",
		"wm_class":         "whatsapp",
	}
}

func TestRender_deterministic(t *testing.T) {
	r, err := render.New("")
	require.NoError(t, err)

	for _, name := range render.Names {
		first, err := r.Render(name, fullContext())
		require.NoError(t, err, name)
		second, err := r.Render(name, fullContext())
		require.NoError(t, err, name)
		assert.Equal(t, first, second, name)
	}
}

func TestRender_packageJSONIsValid(t *testing.T) {
	r, err := render.New("")
	require.NoError(t, err)

	ctx := fullContext()
	ctx["product_name"] = `Say "hi"`
	out, err := r.Render(render.PackageJSON, ctx)
	require.NoError(t, err)

	var manifest struct {
		Name            string            `json:"name"`
		Version         string            `json:"version"`
		Main            string            `json:"main"`
		DevDependencies map[string]string `json:"devDependencies"`
		Build           struct {
			ProductName string `json:"productName"`
		} `json:"build"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &manifest), out)
	assert.Equal(t, "whatsapp", manifest.Name)
	assert.Equal(t, "1.0.0", manifest.Version)
	assert.Equal(t, "main.js", manifest.Main)
	assert.Equal(t, "36.0.0", manifest.DevDependencies["electron"])
	assert.Equal(t, `Say "hi"`, manifest.Build.ProductName)
}

func TestRender_mainJS(t *testing.T) {
	r, err := render.New("")
	require.NoError(t, err)

	ctx := fullContext()
	ctx["product_name"] = "Bob's App"
	out, err := r.Render(render.MainJS, ctx)
	require.NoError(t, err)

	assert.Contains(t, out, "win.loadURL('https://web.whatsapp.com');")
	assert.Contains(t, out, "setSpellCheckerLanguages(['en-US', 'pt-BR'])")
	assert.Contains(t, out, "process.env.LANG = 'pt-BR.UTF-8';")
	assert.Contains(t, out, `title: 'Bob\'s App'`)
}

func TestRender_desktopEntry(t *testing.T) {
	r, err := render.New("")
	require.NoError(t, err)

	ctx := fullContext()
	ctx["description"] = "multi\nline"
	out, err := r.Render(render.DesktopEntry, ctx)
	require.NoError(t, err)

	assert.Contains(t, out, "Name=WhatsApp\n")
	assert.Contains(t, out, "Comment=multi line\n")
	assert.Contains(t, out, "Exec=/opt/whatsapp/whatsapp.AppImage --no-sandbox\n")
	assert.Contains(t, out, "Categories=Network;\n")
	assert.Contains(t, out, "StartupWMClass=whatsapp\n")
}

func TestRender_desktopEntryCategoryStaysOnOneLine(t *testing.T) {
	r, err := render.New("")
	require.NoError(t, err)

	ctx := fullContext()
	ctx["category"] = "Network\nExec=/bin/evil"
	out, err := r.Render(render.DesktopEntry, ctx)
	require.NoError(t, err)

	assert.Contains(t, out, "Categories=Network Exec=/bin/evil;\n")
	assert.Equal(t, 1, strings.Count(out, "\nExec="))
}

func TestRender_missingKey(t *testing.T) {
	r, err := render.New("")
	require.NoError(t, err)

	ctx := fullContext()
	delete(ctx, "url")

	_, err = r.Render(render.MainJS, ctx)
	require.ErrorIs(t, err, render.ErrMissingKey)
	assert.Contains(t, err.Error(), `"url"`)

	_, err = r.RenderAll(ctx)
	require.ErrorIs(t, err, render.ErrMissingKey)

	// templates that do not use the key still render
	_, err = r.Render(render.DesktopEntry, ctx)
	assert.NoError(t, err)
}

func TestRender_unknownTemplate(t *testing.T) {
	r, err := render.New("")
	require.NoError(t, err)

	_, err = r.Render("nope", fullContext())
	assert.ErrorIs(t, err, render.ErrUnknownTemplate)
}

func TestNew_overrideDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, render.DesktopEntry), []byte("Name={{ .product_name }}\n"), 0o644))

	r, err := render.New(dir)
	require.NoError(t, err)

	out, err := r.Render(render.DesktopEntry, fullContext())
	require.NoError(t, err)
	assert.Equal(t, "Name=WhatsApp\n", out)

	// non-overridden templates keep the built-in text
	out, err = r.Render(render.MainJS, fullContext())
	require.NoError(t, err)
	assert.Contains(t, out, "BrowserWindow")
}

func TestNew_badOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, render.MainJS), []byte("{{ .url "), 0o644))

	_, err := render.New(dir)
	assert.Error(t, err)
}
