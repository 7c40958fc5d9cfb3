package cmd

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/warpcrawl/cmd/common"
	"github.com/warpdl/warpcrawl/pkg/warplib"
)

// barSet renders one bar per chapter download.
type barSet struct {
	p    *mpb.Progress
	mu   sync.Mutex
	bars map[string]*mpb.Bar
}

func newBarSet(w io.Writer) *barSet {
	return &barSet{
		p:    mpb.New(mpb.WithOutput(w), mpb.WithWidth(48)),
		bars: make(map[string]*mpb.Bar),
	}
}

// Handlers feeds engine events into the bars.
func (b *barSet) Handlers() *warplib.Handlers {
	return &warplib.Handlers{
		StartHandler: func(task warplib.DownloadTask, _ warplib.TransferState, offset, total int64) {
			b.mu.Lock()
			defer b.mu.Unlock()
			if old, ok := b.bars[task.DestinationPath]; ok {
				old.Abort(true)
			}
			b.bars[task.DestinationPath] = common.InitBar(b.p, task.DisplayName, total, offset)
		},
		ProgressHandler: func(task warplib.DownloadTask, written, total int64) {
			b.mu.Lock()
			defer b.mu.Unlock()
			if bar, ok := b.bars[task.DestinationPath]; ok {
				if total > 0 {
					bar.SetTotal(total, false)
				}
				bar.SetCurrent(written)
			}
		},
		FinishHandler: func(res warplib.Result) {
			b.mu.Lock()
			defer b.mu.Unlock()
			bar, ok := b.bars[res.Task.DestinationPath]
			if !ok {
				return
			}
			delete(b.bars, res.Task.DestinationPath)
			if res.Outcome == warplib.OutcomeComplete {
				bar.SetTotal(res.Written, true)
				return
			}
			bar.Abort(false)
		},
	}
}

// Wait stops any bar still open and waits for the renderer.
func (b *barSet) Wait() {
	b.mu.Lock()
	for k, bar := range b.bars {
		bar.Abort(false)
		delete(b.bars, k)
	}
	b.mu.Unlock()
	b.p.Wait()
}
