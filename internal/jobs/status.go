package jobs

// Status identifiers for the jobs table. These values must match
// the rows seeded into the status table by the migrations.
//
// Centralizing these here avoids scattering magic numbers like 4
// ("succeeded") across packages.
const (
	StatusQueued     int64 = 1
	StatusAssigned   int64 = 2
	StatusProcessing int64 = 3
	StatusSucceeded  int64 = 4
	StatusFailed     int64 = 5
	StatusAborted    int64 = 6
)

// Job type identifiers seeded by the migrations. Job type names have
// been renamed across schema history, so consumers compare by id and
// treat the name column as opaque.
const (
	TypePDF                  int64 = 1
	TypeWebHostingPreview    int64 = 2
	TypeGitPDF               int64 = 3
	TypeGitWebHostingPreview int64 = 4
)

// IsTerminal reports whether a status id is one of succeeded, failed
// or aborted. A job that reaches a terminal status never leaves the
// terminal set.
func IsTerminal(statusID int64) bool {
	switch statusID {
	case StatusSucceeded, StatusFailed, StatusAborted:
		return true
	}
	return false
}

// ResolveStatus applies the terminal-state lock: once the current
// status is terminal, an incoming active status is discarded and the
// current status kept. Terminal-to-terminal moves are allowed, so a
// late "aborted" can still override "failed".
func ResolveStatus(current, incoming int64) int64 {
	if IsTerminal(current) && !IsTerminal(incoming) {
		return current
	}
	return incoming
}
