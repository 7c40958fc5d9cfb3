package common

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// InitBar adds a chapter progress bar to p. total is 0 when the server
// declares no size; offset is the byte count already on disk.
func InitBar(p *mpb.Progress, name string, total, offset int64) *mpb.Bar {
	style := mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]")
	bar := p.New(total, style,
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WC{W: 4}), "done"),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f"),
			decor.Name(" "),
			decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30),
		),
	)
	if offset > 0 {
		bar.SetCurrent(offset)
	}
	bar.EnableTriggerComplete()
	return bar
}
