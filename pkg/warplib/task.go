package warplib

// DownloadTask describes one asset to materialize. Tasks are immutable once
// built.
type DownloadTask struct {
	SourceURL       string
	DestinationPath string
	// ExpectedSize is the advisory size from upstream metadata, shown in
	// progress when the server declares none.
	ExpectedSize string
	DisplayName  string
}

// Outcome is the final result class of a download.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeComplete
	OutcomeFailed
	OutcomeSizeMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeComplete:
		return "complete"
	case OutcomeFailed:
		return "failed"
	case OutcomeSizeMismatch:
		return "size-mismatch"
	}
	return "unknown"
}

// Result reports what Download did.
type Result struct {
	Task    DownloadTask
	Outcome Outcome
	State   TransferState
	// Written is the length of the partial or final file when the download
	// stopped.
	Written int64
	Total   int64
	// Attempts counts transport attempts, retries included.
	Attempts int
	Err      error
}
