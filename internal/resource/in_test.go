package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bindery/internal/model"
)

func jobServer(t *testing.T, path string, job model.Job) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(job); err != nil {
			t.Errorf("encode job: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}

func TestInWritesAllSlots(t *testing.T) {
	version := "1.11"
	style := "astronomy"
	srv := jobServer(t, "/api/jobs/7", model.Job{
		ID:           7,
		CollectionID: "col11992",
		StatusID:     2,
		JobTypeID:    1,
		Version:      &version,
		Style:        &style,
		ContentServer: &model.ContentServer{
			ID: 1, Name: "content01", Hostname: "content01.cnx.org",
		},
	})

	dir := t.TempDir()
	resp, err := In(context.Background(), dir, InRequest{
		Source:  Source{APIRoot: srv.URL + "/api"},
		Version: Version{ID: "7"},
	})
	if err != nil {
		t.Fatalf("in: %v", err)
	}
	if resp.Version.ID != "7" {
		t.Fatalf("expected version 7, got %q", resp.Version.ID)
	}

	if got := readFile(t, dir, "id"); got != "7" {
		t.Fatalf("id slot = %q", got)
	}
	if got := readFile(t, dir, "collection_id"); got != "col11992" {
		t.Fatalf("collection_id slot = %q", got)
	}
	if got := readFile(t, dir, "version"); got != "1.11" {
		t.Fatalf("version slot = %q", got)
	}
	if got := readFile(t, dir, "collection_style"); got != "astronomy" {
		t.Fatalf("collection_style slot = %q", got)
	}
	if got := readFile(t, dir, "content_server"); got != "content01.cnx.org" {
		t.Fatalf("content_server slot = %q", got)
	}

	var full model.Job
	if err := json.Unmarshal([]byte(readFile(t, dir, "job.json")), &full); err != nil {
		t.Fatalf("job.json: %v", err)
	}
	if full.ID != 7 || full.CollectionID != "col11992" {
		t.Fatalf("job.json content wrong: %+v", full)
	}
}

func TestInNullSlotsSkippedVersionDefaults(t *testing.T) {
	srv := jobServer(t, "/api/jobs/9", model.Job{
		ID:           9,
		CollectionID: "col24950",
		StatusID:     2,
		JobTypeID:    2,
	})

	dir := t.TempDir()
	if _, err := In(context.Background(), dir, InRequest{
		Source:  Source{APIRoot: srv.URL + "/api"},
		Version: Version{ID: "9"},
	}); err != nil {
		t.Fatalf("in: %v", err)
	}

	if got := readFile(t, dir, "version"); got != "latest" {
		t.Fatalf("unset version must default to latest, got %q", got)
	}
	for _, name := range []string{"collection_style", "content_server"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s slot must not exist for a null value", name)
		}
	}
}

func TestInMissingJobFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Job not found"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := In(context.Background(), t.TempDir(), InRequest{
		Source:  Source{APIRoot: srv.URL + "/api"},
		Version: Version{ID: "404"},
	})
	if err == nil {
		t.Fatal("expected error for missing job")
	}
}
