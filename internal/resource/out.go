package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bindery/internal/client"
)

// Out gathers the executor's outputs from srcDir and posts them back
// to the job service as a sparse update. File-slot indirection: the
// executor's outputs (a generated URL, a long error blob) exist only
// as files in the build directory, so params reference them by
// relative path and Out dereferences before the PUT. A missing slot
// file is a hard failure; retries belong to the orchestrator.
func Out(ctx context.Context, srcDir string, req OutRequest) (VersionResponse, error) {
	params := make(map[string]any, len(req.Params))
	for k, v := range req.Params {
		params[k] = v
	}

	readSlot := func(key string) (string, error) {
		rel, ok := params[key].(string)
		if !ok {
			return "", fmt.Errorf("params.%s must be a relative path", key)
		}
		b, err := os.ReadFile(filepath.Join(srcDir, rel))
		if err != nil {
			return "", fmt.Errorf("read %s slot: %w", key, err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	if _, ok := params["id"]; !ok {
		return VersionResponse{}, fmt.Errorf("params.id is required")
	}
	id, err := readSlot("id")
	if err != nil {
		return VersionResponse{}, err
	}
	delete(params, "id")

	if _, ok := params["pdf_url"]; ok {
		url, err := readSlot("pdf_url")
		if err != nil {
			return VersionResponse{}, err
		}
		params["pdf_url"] = url
	}

	if _, ok := params["error_message"]; !ok {
		if _, ok := params["error_message_file"]; ok {
			msg, err := readSlot("error_message_file")
			if err != nil {
				return VersionResponse{}, err
			}
			params["error_message"] = msg
		}
	}
	delete(params, "error_message_file")

	cl := client.New(req.Source.APIRoot)
	job, err := cl.UpdateJob(ctx, id, params)
	if err != nil {
		return VersionResponse{}, fmt.Errorf("update job %s: %w", id, err)
	}

	return VersionResponse{Version: Version{ID: job.ID.String()}}, nil
}
