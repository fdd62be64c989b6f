package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bindery/internal/client"
)

// In fetches the job named by the version cursor and materializes its
// parameters as typed file slots in destDir for the executor. Slots
// whose source value is null are not created at all; the executor
// tests for file existence, not emptiness.
func In(ctx context.Context, destDir string, req InRequest) (VersionResponse, error) {
	cl := client.New(req.Source.APIRoot)
	job, err := cl.GetJob(ctx, req.Version.ID)
	if err != nil {
		return VersionResponse{}, fmt.Errorf("fetch job %s: %w", req.Version.ID, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return VersionResponse{}, fmt.Errorf("create dest dir: %w", err)
	}

	writeSlot := func(name, content string) error {
		if err := os.WriteFile(filepath.Join(destDir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		return nil
	}

	if err := writeSlot("id", job.ID.String()); err != nil {
		return VersionResponse{}, err
	}
	if err := writeSlot("collection_id", job.CollectionID); err != nil {
		return VersionResponse{}, err
	}

	// The version slot always exists; an unset content version means
	// "build the latest".
	version := "latest"
	if job.Version != nil && *job.Version != "" {
		version = *job.Version
	}
	if err := writeSlot("version", version); err != nil {
		return VersionResponse{}, err
	}

	if job.Style != nil {
		if err := writeSlot("collection_style", *job.Style); err != nil {
			return VersionResponse{}, err
		}
	}
	if job.ContentServer != nil {
		if err := writeSlot("content_server", job.ContentServer.Hostname); err != nil {
			return VersionResponse{}, err
		}
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return VersionResponse{}, fmt.Errorf("encode job: %w", err)
	}
	if err := writeSlot("job.json", string(raw)); err != nil {
		return VersionResponse{}, err
	}

	return VersionResponse{Version: Version{ID: job.ID.String()}}, nil
}
