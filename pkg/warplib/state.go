package warplib

// TransferState is the lifecycle position of one DownloadTask. Nothing but
// the filesystem stores it: see Classify.
type TransferState int

const (
	StatePending TransferState = iota
	StateStarting
	StateResuming
	StateStreaming
	StateVerifying
	StateComplete
	StateRetryWait
	StateFailed
)

var stateNames = [...]string{
	StatePending:   "pending",
	StateStarting:  "starting",
	StateResuming:  "resuming",
	StateStreaming: "streaming",
	StateVerifying: "verifying",
	StateComplete:  "complete",
	StateRetryWait: "retry-wait",
	StateFailed:    "failed",
}

func (s TransferState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Classify derives the state of a task from its files. A final file means
// complete; a non-empty partial file means resume; anything else starts
// from zero.
func Classify(partialExists bool, partialSize int64, finalExists bool) TransferState {
	switch {
	case finalExists:
		return StateComplete
	case partialExists && partialSize > 0:
		return StateResuming
	}
	return StateStarting
}
