package store

import (
	"strings"
	"testing"

	"bindery/internal/model"
)

func TestBuildJobUpdateStatusOnly(t *testing.T) {
	set, args := buildJobUpdate(model.JobUpdate{StatusID: 4}, 4)

	if set != "status_id = $1, updated_at = now()" {
		t.Fatalf("unexpected SET clause: %q", set)
	}
	if len(args) != 1 || args[0] != int64(4) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildJobUpdateWithValues(t *testing.T) {
	u := model.JobUpdate{
		StatusID: 4,
		PDFURL:   model.Some("https://example/col.pdf"),
	}
	set, args := buildJobUpdate(u, 4)

	if !strings.Contains(set, "pdf_url = $2") {
		t.Fatalf("pdf_url not rendered: %q", set)
	}
	if strings.Contains(set, "worker_version") || strings.Contains(set, "error_message") {
		t.Fatalf("absent fields must not be rendered: %q", set)
	}
	if len(args) != 2 || args[1] != "https://example/col.pdf" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildJobUpdateExplicitNull(t *testing.T) {
	u := model.JobUpdate{
		StatusID:     2,
		ErrorMessage: model.Null[string](),
	}
	set, args := buildJobUpdate(u, 2)

	if !strings.Contains(set, "error_message = NULL") {
		t.Fatalf("explicit null must clear the column: %q", set)
	}
	if len(args) != 1 {
		t.Fatalf("null must not add a placeholder: %v", args)
	}
}

func TestBuildJobUpdateUsesResolvedStatus(t *testing.T) {
	// The caller resolves the terminal-state lock before rendering; the
	// clause must carry the resolved value, not the incoming one.
	u := model.JobUpdate{
		StatusID:      2,
		WorkerVersion: model.Some("1.4.0"),
	}
	set, args := buildJobUpdate(u, 5)

	if !strings.HasPrefix(set, "status_id = $1") {
		t.Fatalf("unexpected SET clause: %q", set)
	}
	if args[0] != int64(5) {
		t.Fatalf("expected resolved status 5, got %v", args[0])
	}
	if !strings.Contains(set, "worker_version = $2") || args[1] != "1.4.0" {
		t.Fatalf("worker_version must still apply: %q %v", set, args)
	}
}
