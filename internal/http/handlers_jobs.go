package http

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"bindery/internal/metrics"
	"bindery/internal/model"
	"bindery/internal/store"
)

const defaultListLimit = 50

func querierFromCtx(c *fiber.Ctx) store.Querier {
	st, _ := c.Locals("store").(store.Querier)
	return st
}

func loggerFromCtx(c *fiber.Ctx) *slog.Logger {
	if l, ok := c.Locals("logger").(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// parseListParams reads skip/limit query parameters with the standard
// defaults (0, 50). Limit is capped at 500.
func parseListParams(c *fiber.Ctx) (limit, skip int32, err error) {
	limit = defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n <= 0 {
			return 0, 0, errors.New("invalid limit value")
		}
		if n > 500 {
			n = 500
		}
		limit = int32(n)
	}
	if v := c.Query("skip"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			return 0, 0, errors.New("invalid skip value")
		}
		skip = int32(n)
	}
	return limit, skip, nil
}

// jobsListHandler returns jobs newest first, sliced by skip/limit.
func jobsListHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	limit, skip, err := parseListParams(c)
	if err != nil {
		return unprocessable(c, err.Error())
	}

	list, err := st.ListJobs(c.Context(), limit, skip)
	if err != nil {
		return internalError(c, "could not list jobs")
	}
	return c.JSON(list)
}

// jobsPageHandler returns jobs newest first, sliced by page*limit.
func jobsPageHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	page, err := strconv.Atoi(c.Params("page"))
	if err != nil || page < 0 {
		return unprocessable(c, "invalid page value")
	}

	limit := int32(defaultListLimit)
	if v := c.Query("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n <= 0 {
			return unprocessable(c, "invalid limit value")
		}
		if n > 500 {
			n = 500
		}
		limit = int32(n)
	}

	list, err := st.ListJobs(c.Context(), limit, int32(page)*limit)
	if err != nil {
		return internalError(c, "could not list jobs")
	}
	return c.JSON(list)
}

// jobDetailHandler returns a single job with joined reference rows.
func jobDetailHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return unprocessable(c, "invalid job id")
	}

	job, err := st.GetJob(c.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, "Job not found")
	}
	if err != nil {
		return internalError(c, "could not fetch job")
	}
	return c.JSON(job)
}

// jobCreateHandler creates a job from a JobCreate body. The required
// creation fields are validated here before the store is touched;
// status_id must be sent explicitly even though the schema defaults
// it to queued.
func jobCreateHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	var in model.JobCreate
	if err := c.BodyParser(&in); err != nil {
		return unprocessable(c, "invalid job payload")
	}
	if in.CollectionID == "" {
		return unprocessable(c, "collection_id is required")
	}
	if in.StatusID <= 0 {
		return unprocessable(c, "status_id is required")
	}
	if in.JobTypeID <= 0 {
		return unprocessable(c, "job_type_id is required")
	}

	job, err := st.CreateJob(c.Context(), in)
	if errors.Is(err, store.ErrBadReference) {
		return unprocessable(c, err.Error())
	}
	if err != nil {
		loggerFromCtx(c).Error("create job failed", "error", err)
		return internalError(c, "could not create job")
	}

	metrics.RecordJobCreated(job.JobType.Name)
	return c.JSON(job)
}

// jobUpdateHandler applies a sparse update to a job. The store runs
// the read-coerce-write sequence in one transaction, so a stale
// active status from a retrying worker can never regress a job that
// already reached a terminal state.
func jobUpdateHandler(c *fiber.Ctx) error {
	st := querierFromCtx(c)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return unprocessable(c, "invalid job id")
	}

	var in model.JobUpdate
	if err := c.BodyParser(&in); err != nil {
		return unprocessable(c, "invalid job payload")
	}
	if in.StatusID <= 0 {
		return unprocessable(c, "status_id is required")
	}

	res, err := st.UpdateJob(c.Context(), id, in)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, "Job not found")
	}
	if errors.Is(err, store.ErrBadReference) {
		return unprocessable(c, err.Error())
	}
	if err != nil {
		loggerFromCtx(c).Error("update job failed", "job_id", id, "error", err)
		return internalError(c, "could not update job")
	}

	metrics.RecordStatusTransition(res.PrevStatusID, int64(res.Job.StatusID))
	if res.Coerced {
		metrics.RecordTerminalCoercion()
		loggerFromCtx(c).Info("terminal status kept",
			"job_id", id,
			"current_status_id", res.PrevStatusID,
			"incoming_status_id", int64(in.StatusID),
		)
	}
	return c.JSON(res.Job)
}
