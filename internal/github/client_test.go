package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	gh "github.com/jsas4coding/tools-electron-app-generator/internal/github"
)

func TestLatestVersion(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name": "v36.2.1"}`))
	}))
	defer srv.Close()

	client := gh.NewClient(srv.URL, "secret")
	version, err := client.LatestVersion(context.Background(), gh.ElectronRepo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "36.2.1" {
		t.Errorf("expected 36.2.1, got %s", version)
	}
	if gotPath != "/repos/electron/electron/releases/latest" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
}

func TestLatestVersion_notFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := gh.NewClient(srv.URL, "")
	if _, err := client.LatestVersion(context.Background(), "owner/repo"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestLatestVersion_rateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := gh.NewClient(srv.URL, "")
	if _, err := client.LatestVersion(context.Background(), "owner/repo"); err == nil {
		t.Fatal("expected error for 403")
	}
}

func TestResolveElectron(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"tag_name": "v37.0.0"}`))
	}))
	defer srv.Close()

	client := gh.NewClient(srv.URL, "")

	pinned, err := client.ResolveElectron(context.Background(), "36.0.0")
	if err != nil || pinned != "36.0.0" {
		t.Fatalf("pinned version should pass through, got %q, %v", pinned, err)
	}
	if calls != 0 {
		t.Errorf("pinned version should not hit the API")
	}

	latest, err := client.ResolveElectron(context.Background(), "latest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != "37.0.0" {
		t.Errorf("expected 37.0.0, got %s", latest)
	}
}
