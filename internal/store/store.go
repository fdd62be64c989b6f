package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"bindery/internal/jobs"
	"bindery/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrBadReference is returned when an insert or update references a
// status, job type or content server row that does not exist.
var ErrBadReference = errors.New("invalid reference")

// UpdateResult carries the reloaded job after an update, plus what the
// status looked like before it so callers can observe transitions and
// terminal-lock coercions.
type UpdateResult struct {
	Job          model.Job
	PrevStatusID int64
	Coerced      bool
}

// Querier is the read/write surface the HTTP layer depends on. It is
// implemented by *Store and by test fakes.
type Querier interface {
	ListJobs(ctx context.Context, limit, offset int32) ([]model.Job, error)
	GetJob(ctx context.Context, id int64) (model.Job, error)
	CreateJob(ctx context.Context, in model.JobCreate) (model.Job, error)
	UpdateJob(ctx context.Context, id int64, u model.JobUpdate) (UpdateResult, error)
	ListStatuses(ctx context.Context, limit, offset int32) ([]model.Status, error)
	ListJobTypes(ctx context.Context, limit, offset int32) ([]model.JobType, error)
	ListContentServers(ctx context.Context, limit, offset int32) ([]model.ContentServer, error)
}

// Store wraps access to the database via a shared *sql.DB with pooling.
// Each call checks a connection out of the pool for its own lifetime,
// so no session is ever shared across requests.
type Store struct {
	DB *sql.DB
}

var _ Querier = (*Store)(nil)

// New creates a new Store on top of a shared *sql.DB.
func New(database *sql.DB) *Store {
	return &Store{DB: database}
}

// jobColumns selects the job row plus its eagerly joined reference
// rows. Column order must match scanJob.
const jobColumns = `
	j.id, j.collection_id, j.status_id, j.pdf_url, j.version, j.style,
	j.job_type_id, j.worker_version, j.content_server_id, j.error_message,
	j.created_at, j.updated_at,
	s.id, s.name, s.created_at, s.updated_at,
	t.id, t.name, t.display_name, t.created_at, t.updated_at,
	cs.id, cs.name, cs.hostname, cs.host_url, cs.created_at, cs.updated_at`

const jobFrom = `
	FROM jobs j
	JOIN status s ON s.id = j.status_id
	JOIN job_types t ON t.id = j.job_type_id
	LEFT JOIN content_servers cs ON cs.id = j.content_server_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.Job, error) {
	var (
		j model.Job

		pdfURL, version, style      sql.NullString
		workerVersion, errorMessage sql.NullString
		contentServerID             sql.NullInt64

		csID                      sql.NullInt64
		csName, csHostname, csURL sql.NullString
		csCreated, csUpdated      sql.NullTime
	)

	err := row.Scan(
		&j.ID, &j.CollectionID, &j.StatusID, &pdfURL, &version, &style,
		&j.JobTypeID, &workerVersion, &contentServerID, &errorMessage,
		&j.CreatedAt, &j.UpdatedAt,
		&j.Status.ID, &j.Status.Name, &j.Status.CreatedAt, &j.Status.UpdatedAt,
		&j.JobType.ID, &j.JobType.Name, &j.JobType.DisplayName,
		&j.JobType.CreatedAt, &j.JobType.UpdatedAt,
		&csID, &csName, &csHostname, &csURL, &csCreated, &csUpdated,
	)
	if err != nil {
		return model.Job{}, err
	}

	j.PDFURL = fromNullString(pdfURL)
	j.Version = fromNullString(version)
	j.Style = fromNullString(style)
	j.WorkerVersion = fromNullString(workerVersion)
	j.ErrorMessage = fromNullString(errorMessage)
	if contentServerID.Valid {
		id := model.ID(contentServerID.Int64)
		j.ContentServerID = &id
	}
	if csID.Valid {
		j.ContentServer = &model.ContentServer{
			ID:        model.ID(csID.Int64),
			Name:      csName.String,
			Hostname:  csHostname.String,
			HostURL:   csURL.String,
			CreatedAt: csCreated.Time.UTC(),
			UpdatedAt: csUpdated.Time.UTC(),
		}
	}

	// Timestamps are stored as timestamptz; normalize to UTC so the
	// wire format is stable regardless of the session time zone.
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	j.Status.CreatedAt = j.Status.CreatedAt.UTC()
	j.Status.UpdatedAt = j.Status.UpdatedAt.UTC()
	j.JobType.CreatedAt = j.JobType.CreatedAt.UTC()
	j.JobType.UpdatedAt = j.JobType.UpdatedAt.UTC()

	return j, nil
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// ListJobs returns jobs newest first by created_at, ties broken by id
// so ordering is deterministic.
func (s *Store) ListJobs(ctx context.Context, limit, offset int32) ([]model.Job, error) {
	q := "SELECT" + jobColumns + jobFrom + `
	ORDER BY j.created_at DESC, j.id DESC
	LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := make([]model.Job, 0, limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetJob fetches a single job with its joined reference rows.
func (s *Store) GetJob(ctx context.Context, id int64) (model.Job, error) {
	q := "SELECT" + jobColumns + jobFrom + " WHERE j.id = $1"

	j, err := scanJob(s.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Job{}, ErrNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("get job %d: %w", id, err)
	}
	return j, nil
}

// CreateJob inserts a new job row and returns it with joined
// reference rows and server-assigned fields populated.
func (s *Store) CreateJob(ctx context.Context, in model.JobCreate) (model.Job, error) {
	var contentServerID sql.NullInt64
	if in.ContentServerID != nil {
		contentServerID = sql.NullInt64{Int64: int64(*in.ContentServerID), Valid: true}
	}

	const q = `
INSERT INTO jobs (collection_id, status_id, job_type_id, content_server_id,
                  version, style, pdf_url, worker_version, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

	var id int64
	err := s.DB.QueryRowContext(ctx, q,
		in.CollectionID, int64(in.StatusID), int64(in.JobTypeID), contentServerID,
		toNullString(in.Version), toNullString(in.Style), toNullString(in.PDFURL),
		toNullString(in.WorkerVersion), toNullString(in.ErrorMessage),
	).Scan(&id)
	if err != nil {
		return model.Job{}, translateRefError(fmt.Errorf("insert job: %w", err))
	}

	return s.GetJob(ctx, id)
}

// UpdateJob applies a sparse update inside a single transaction. The
// current status is read with FOR UPDATE so the terminal-state lock is
// serialized against concurrent writers: an incoming active status
// never regresses a job that is already terminal, while the other
// fields in the same update still take effect.
func (s *Store) UpdateJob(ctx context.Context, id int64, u model.JobUpdate) (UpdateResult, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, "SELECT status_id FROM jobs WHERE id = $1 FOR UPDATE", id).Scan(&current)
	if err == sql.ErrNoRows {
		return UpdateResult{}, ErrNotFound
	}
	if err != nil {
		return UpdateResult{}, fmt.Errorf("lock job %d: %w", id, err)
	}

	resolved := jobs.ResolveStatus(current, int64(u.StatusID))

	setClause, args := buildJobUpdate(u, resolved)
	args = append(args, id)
	q := fmt.Sprintf("UPDATE jobs SET %s WHERE id = $%d", setClause, len(args))
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return UpdateResult{}, translateRefError(fmt.Errorf("update job %d: %w", id, err))
	}

	sel := "SELECT" + jobColumns + jobFrom + " WHERE j.id = $1"
	j, err := scanJob(tx.QueryRowContext(ctx, sel, id))
	if err != nil {
		return UpdateResult{}, fmt.Errorf("reload job %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return UpdateResult{}, fmt.Errorf("commit: %w", err)
	}
	return UpdateResult{
		Job:          j,
		PrevStatusID: current,
		Coerced:      resolved != int64(u.StatusID),
	}, nil
}

// buildJobUpdate renders the SET clause for a sparse job update.
// status_id and updated_at are always written; each Optional field is
// written only when its key was present in the payload, with explicit
// null clearing the column.
func buildJobUpdate(u model.JobUpdate, statusID int64) (string, []any) {
	sets := []string{"status_id = $1", "updated_at = now()"}
	args := []any{statusID}

	add := func(col string, o model.Optional[string]) {
		if !o.Set {
			return
		}
		if o.Valid {
			args = append(args, o.Value)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		} else {
			sets = append(sets, col+" = NULL")
		}
	}
	add("pdf_url", u.PDFURL)
	add("worker_version", u.WorkerVersion)
	add("error_message", u.ErrorMessage)

	return strings.Join(sets, ", "), args
}

// translateRefError maps Postgres foreign-key violations to
// ErrBadReference so the handler layer can answer 422 instead of 500.
func translateRefError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%w: %s", ErrBadReference, pgErr.Detail)
	}
	return err
}

// ListStatuses returns the seeded status rows ordered by id.
func (s *Store) ListStatuses(ctx context.Context, limit, offset int32) ([]model.Status, error) {
	const q = `
SELECT id, name, created_at, updated_at
FROM status ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var out []model.Status
	for rows.Next() {
		var st model.Status
		if err := rows.Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		st.CreatedAt = st.CreatedAt.UTC()
		st.UpdatedAt = st.UpdatedAt.UTC()
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListJobTypes returns the seeded job type rows ordered by id.
func (s *Store) ListJobTypes(ctx context.Context, limit, offset int32) ([]model.JobType, error) {
	const q = `
SELECT id, name, display_name, created_at, updated_at
FROM job_types ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list job types: %w", err)
	}
	defer rows.Close()

	var out []model.JobType
	for rows.Next() {
		var t model.JobType
		if err := rows.Scan(&t.ID, &t.Name, &t.DisplayName, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = t.CreatedAt.UTC()
		t.UpdatedAt = t.UpdatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListContentServers returns the known content servers ordered by id.
func (s *Store) ListContentServers(ctx context.Context, limit, offset int32) ([]model.ContentServer, error) {
	const q = `
SELECT id, name, hostname, host_url, created_at, updated_at
FROM content_servers ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list content servers: %w", err)
	}
	defer rows.Close()

	var out []model.ContentServer
	for rows.Next() {
		var cs model.ContentServer
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Hostname, &cs.HostURL, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, err
		}
		cs.CreatedAt = cs.CreatedAt.UTC()
		cs.UpdatedAt = cs.UpdatedAt.UTC()
		out = append(out, cs)
	}
	return out, rows.Err()
}
