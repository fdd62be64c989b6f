// Package resource implements the check/in/out halves of the CI
// resource protocol: JSON on stdin, JSON on stdout, one job per
// invocation.
package resource

import "bindery/internal/model"

// Source is the resource configuration shared by all three adapters.
// StatusID and JobTypeID arrive from pipeline configuration and may be
// encoded as either numbers or strings.
type Source struct {
	APIRoot   string    `json:"api_root"`
	StatusID  *model.ID `json:"status_id,omitempty"`
	JobTypeID *model.ID `json:"job_type_id,omitempty"`
}

// Version is the cursor the orchestrator persists between polls: the
// id of the last job this resource reported.
type Version struct {
	ID string `json:"id"`
}

// CheckRequest is the stdin payload for the check adapter.
type CheckRequest struct {
	Source  Source   `json:"source"`
	Version *Version `json:"version,omitempty"`
}

// InRequest is the stdin payload for the in adapter.
type InRequest struct {
	Source  Source  `json:"source"`
	Version Version `json:"version"`
}

// OutRequest is the stdin payload for the out adapter. Params values
// that name file slots ("id", "pdf_url", "error_message_file") are
// relative paths inside the build directory; everything else is
// forwarded to the job service verbatim.
type OutRequest struct {
	Source Source         `json:"source"`
	Params map[string]any `json:"params"`
}

// VersionResponse is the stdout payload of in and out.
type VersionResponse struct {
	Version Version `json:"version"`
}
