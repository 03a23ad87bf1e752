package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var validAppName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Load parses the JSON catalog at path and returns the validated entries in file order.
// Any malformed entry fails the whole catalog.
func Load(path string) ([]App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) ([]App, error) {
	var apps []App
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var errs []string
	seen := make(map[string]int, len(apps))

	for i, a := range apps {
		label := fmt.Sprintf("#%d", i+1)
		if a.AppName != "" {
			label = fmt.Sprintf("#%d %s", i+1, a.AppName)
		}

		var fieldErrs []string
		switch {
		case a.AppName == "":
			fieldErrs = append(fieldErrs, "app_name is required")
		case !validAppName.MatchString(a.AppName) || a.AppName == "." || a.AppName == "..":
			fieldErrs = append(fieldErrs, "app_name may only contain letters, digits, '.', '_' and '-'")
		default:
			if prev, dup := seen[a.AppName]; dup {
				fieldErrs = append(fieldErrs, fmt.Sprintf("app_name duplicates entry #%d", prev))
			}
			seen[a.AppName] = i + 1
		}
		if a.Name == "" {
			fieldErrs = append(fieldErrs, "name is required")
		}
		if a.URL == "" {
			fieldErrs = append(fieldErrs, "url is required")
		} else if u, err := url.Parse(a.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fieldErrs = append(fieldErrs, fmt.Sprintf("url %q is not an absolute http(s) URL", a.URL))
		}
		if a.Icon == "" {
			fieldErrs = append(fieldErrs, "icon is required")
		}
		if a.Category == "" {
			fieldErrs = append(fieldErrs, "category is required")
		}
		if len(fieldErrs) > 0 {
			errs = append(errs, fmt.Sprintf("[%s]: %s", label, strings.Join(fieldErrs, ", ")))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog validation errors:\n%s", strings.Join(errs, "\n"))
	}
	return apps, nil
}

// Filter keeps only apps whose app_name is listed. An empty list keeps everything.
func Filter(apps []App, names []string) ([]App, error) {
	if len(names) == 0 {
		return apps, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []App
	for _, a := range apps {
		if want[a.AppName] {
			out = append(out, a)
			delete(want, a.AppName)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for _, n := range names {
			if want[n] {
				missing = append(missing, n)
			}
		}
		return nil, fmt.Errorf("unknown app %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Names returns the app_name of every entry, skipped ones included.
func Names(apps []App) []string {
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.AppName
	}
	return names
}
