package warplib

type (
	// StartHandlerFunc is called once the response is accepted and the
	// partial file is open. offset is the number of bytes already on disk
	// and total the declared size, 0 when unknown.
	StartHandlerFunc func(task DownloadTask, state TransferState, offset, total int64)
	// ProgressHandlerFunc receives throttled progress observations.
	ProgressHandlerFunc func(task DownloadTask, written, total int64)
	// RetryHandlerFunc is called before each retry wait.
	RetryHandlerFunc func(task DownloadTask, attempt int, err error)
	// FinishHandlerFunc is called exactly once per Download call.
	FinishHandlerFunc func(res Result)
)

type Handlers struct {
	StartHandler    StartHandlerFunc
	ProgressHandler ProgressHandlerFunc
	RetryHandler    RetryHandlerFunc
	FinishHandler   FinishHandlerFunc
}

func (h *Handlers) setDefault() {
	if h.StartHandler == nil {
		h.StartHandler = func(DownloadTask, TransferState, int64, int64) {}
	}
	if h.ProgressHandler == nil {
		h.ProgressHandler = func(DownloadTask, int64, int64) {}
	}
	if h.RetryHandler == nil {
		h.RetryHandler = func(DownloadTask, int, error) {}
	}
	if h.FinishHandler == nil {
		h.FinishHandler = func(Result) {}
	}
}
