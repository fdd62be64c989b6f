package resource

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"bindery/internal/client"
)

// Check discovers jobs newer than the supplied cursor that match the
// configured status (and optionally job type) filter. Ids are emitted
// in ascending order so the orchestrator never regresses its cursor.
//
// With no status filter configured, check degenerates to cursor
// persistence: it echoes the cursor back if one was given and reports
// nothing otherwise.
func Check(ctx context.Context, req CheckRequest) ([]Version, error) {
	if req.Source.StatusID == nil {
		if req.Version != nil {
			return []Version{*req.Version}, nil
		}
		return []Version{}, nil
	}

	cursor := int64(-1)
	if req.Version != nil && req.Version.ID != "" {
		n, err := strconv.ParseInt(req.Version.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor id %q: %w", req.Version.ID, err)
		}
		cursor = n
	}

	cl := client.New(req.Source.APIRoot)
	list, err := cl.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	var ids []int64
	for _, j := range list {
		if j.StatusID != *req.Source.StatusID {
			continue
		}
		if req.Source.JobTypeID != nil && j.JobTypeID != *req.Source.JobTypeID {
			continue
		}
		if int64(j.ID) <= cursor {
			continue
		}
		ids = append(ids, int64(j.ID))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Version, 0, len(ids))
	for _, id := range ids {
		out = append(out, Version{ID: strconv.FormatInt(id, 10)})
	}
	return out, nil
}
