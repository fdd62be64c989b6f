package model

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`"42"`), &id); err != nil {
		t.Fatalf("unmarshal string id: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}

	if err := json.Unmarshal([]byte(`7`), &id); err != nil {
		t.Fatalf("unmarshal numeric id: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected 7, got %d", id)
	}

	if err := json.Unmarshal([]byte(`"abc"`), &id); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestIDMarshalAsString(t *testing.T) {
	b, err := json.Marshal(ID(31))
	if err != nil {
		t.Fatalf("marshal id: %v", err)
	}
	if string(b) != `"31"` {
		t.Fatalf("expected \"31\", got %s", b)
	}
}

func TestJobUpdateSparseDecoding(t *testing.T) {
	// Absent key: not set at all.
	var u JobUpdate
	if err := json.Unmarshal([]byte(`{"status_id":"4"}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.StatusID != 4 {
		t.Fatalf("expected status_id 4, got %d", u.StatusID)
	}
	if u.PDFURL.Set || u.WorkerVersion.Set || u.ErrorMessage.Set {
		t.Fatal("absent keys must not be marked as set")
	}

	// Explicit null: set but not valid.
	u = JobUpdate{}
	if err := json.Unmarshal([]byte(`{"status_id":4,"error_message":null}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !u.ErrorMessage.Set || u.ErrorMessage.Valid {
		t.Fatalf("explicit null must be set and invalid, got %+v", u.ErrorMessage)
	}

	// Present value: set and valid.
	u = JobUpdate{}
	if err := json.Unmarshal([]byte(`{"status_id":4,"pdf_url":"https://example/x.pdf"}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !u.PDFURL.Set || !u.PDFURL.Valid || u.PDFURL.Value != "https://example/x.pdf" {
		t.Fatalf("unexpected pdf_url: %+v", u.PDFURL)
	}
}

func TestJobMarshalEmbedsReferences(t *testing.T) {
	style := "astronomy"
	j := Job{
		ID:           7,
		CollectionID: "col11992",
		StatusID:     1,
		JobTypeID:    2,
		Style:        &style,
		Status:       Status{ID: 1, Name: "queued"},
		JobType:      JobType{ID: 2, Name: "web-hosting-preview", DisplayName: "Web Hosting Preview"},
	}

	b, err := json.Marshal(j)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if m["id"] != "7" {
		t.Fatalf("expected string id \"7\", got %v", m["id"])
	}
	if m["content_server"] != nil {
		t.Fatalf("expected null content_server, got %v", m["content_server"])
	}
	status, ok := m["status"].(map[string]any)
	if !ok || status["name"] != "queued" {
		t.Fatalf("expected embedded status row, got %v", m["status"])
	}
	if m["pdf_url"] != nil {
		t.Fatalf("expected explicit null pdf_url, got %v", m["pdf_url"])
	}
}
