package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a database identifier that is string-encoded on the wire.
// Incoming JSON may carry it as either a string ("42") or a bare
// number (42); responses always render the string form.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", string(b))
	}
	*id = ID(n)
	return nil
}

// Optional is a JSON field that distinguishes an absent key from an
// explicit null. Set is true whenever the key appeared in the payload;
// Valid is false when the key carried a null. An absent key leaves the
// stored column untouched, an explicit null clears it.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns a present, non-null Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns a present Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Status is a seeded lifecycle label (queued, assigned, processing,
// succeeded, failed, aborted).
type Status struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobType is the kind of artifact a job produces (pdf, preview, ...).
type JobType struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContentServer is a named upstream content source.
type ContentServer struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Hostname  string    `json:"hostname"`
	HostURL   string    `json:"host_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job is a single unit of build work. Reference rows are eagerly
// joined on every read; ContentServer is nil when the foreign key is
// null or unresolved.
type Job struct {
	ID              ID             `json:"id"`
	CollectionID    string         `json:"collection_id"`
	StatusID        ID             `json:"status_id"`
	PDFURL          *string        `json:"pdf_url"`
	Version         *string        `json:"version"`
	Style           *string        `json:"style"`
	JobTypeID       ID             `json:"job_type_id"`
	WorkerVersion   *string        `json:"worker_version"`
	ContentServerID *ID            `json:"content_server_id"`
	ErrorMessage    *string        `json:"error_message"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Status          Status         `json:"status"`
	JobType         JobType        `json:"job_type"`
	ContentServer   *ContentServer `json:"content_server"`
}

// JobCreate is the request body for POST /api/jobs/. Collection id,
// status id and job type id are required; the rest are optional.
type JobCreate struct {
	CollectionID    string  `json:"collection_id"`
	StatusID        ID      `json:"status_id"`
	JobTypeID       ID      `json:"job_type_id"`
	ContentServerID *ID     `json:"content_server_id"`
	Version         *string `json:"version"`
	Style           *string `json:"style"`
	PDFURL          *string `json:"pdf_url"`
	WorkerVersion   *string `json:"worker_version"`
	ErrorMessage    *string `json:"error_message"`
}

// JobUpdate is the sparse request body for PUT /api/jobs/:id. StatusID
// is required; the Optional fields are written only when their key was
// present in the payload.
type JobUpdate struct {
	StatusID      ID               `json:"status_id"`
	PDFURL        Optional[string] `json:"pdf_url"`
	WorkerVersion Optional[string] `json:"worker_version"`
	ErrorMessage  Optional[string] `json:"error_message"`
}
