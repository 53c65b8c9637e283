package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v2"
)

// transferProgress draws one progress bar per transfer. A transfer starts
// when the reported byte count goes backwards or the total changes.
// Transfers of unknown or zero size draw nothing.
type transferProgress struct {
	w     io.Writer
	bar   *progressbar.ProgressBar
	total int64
	last  int64
}

func newTransferProgress(w io.Writer) *transferProgress {
	return &transferProgress{w: w}
}

// Update is a client.Progress callback.
func (p *transferProgress) Update(transferred, total int64) {
	if total <= 0 {
		return
	}
	if p.bar == nil || transferred < p.last || total != p.total {
		p.finish()
		p.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetBytes64(total),
		)
		p.total = total
		p.last = 0
	}

	_ = p.bar.Add64(transferred - p.last)
	p.last = transferred

	if transferred >= total {
		p.finish()
	}
}

func (p *transferProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	_, _ = fmt.Fprintln(p.w)
	p.bar = nil
}
