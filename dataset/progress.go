package dataset

import (
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type progress struct {
	p    *mpb.Progress
	bar  *mpb.Bar
	last time.Time
}

func newProgress(enabled bool, name string, total int) *progress {
	var out io.Writer = os.Stderr
	if !enabled {
		out = io.Discard
	}

	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(out))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)
	return &progress{p: p, bar: bar, last: time.Now()}
}

func (pr *progress) Increment() {
	now := time.Now()
	pr.bar.EwmaIncrement(now.Sub(pr.last))
	pr.last = now
}

// Finish completes the bar, or aborts it when the job failed, and waits for rendering to stop.
func (pr *progress) Finish(failed bool) {
	if failed {
		pr.bar.Abort(false)
	} else {
		pr.bar.SetTotal(-1, true)
	}
	pr.p.Wait()
}
