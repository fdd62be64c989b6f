package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bindery/internal/model"
)

func TestGetJobTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs/3" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.Job{ID: 3, CollectionID: "col11992"})
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	job, err := c.GetJob(context.Background(), "3")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.ID != 3 || job.CollectionID != "col11992" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestNonSuccessReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Job not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api")
	_, err := c.GetJob(context.Background(), "999")

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != 404 {
		t.Fatalf("code = %d", se.Code)
	}
	if se.Body != `{"detail": "Job not found"}` {
		t.Fatalf("body = %q", se.Body)
	}
}

func TestUpdateJobSendsBodyVerbatim(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(model.Job{ID: 7, StatusID: 4})
	}))
	defer srv.Close()

	c := New(srv.URL + "/api")
	params := map[string]any{"status_id": "4", "error_message": nil}
	job, err := c.UpdateJob(context.Background(), "7", params)
	if err != nil {
		t.Fatalf("update job: %v", err)
	}
	if job.ID != 7 {
		t.Fatalf("unexpected job: %+v", job)
	}

	if got["status_id"] != "4" {
		t.Fatalf("status_id = %v", got["status_id"])
	}
	if v, ok := got["error_message"]; !ok || v != nil {
		t.Fatal("explicit null must survive the round trip")
	}
}
