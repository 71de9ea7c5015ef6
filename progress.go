package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HugeFrog24/cineclub-renamer/utils"
	"github.com/schollz/progressbar/v3"
)

// batchProgress renders one step per processed video on stderr.
type batchProgress struct {
	bar *progressbar.ProgressBar
}

// newBatchProgress sizes the bar from the videos currently in dir; when
// listing fails it falls back to an open-ended spinner.
func newBatchProgress(dir string, exts []string) *batchProgress {
	total := -1
	if videos, err := utils.DiscoverVideos(dir, exts); err == nil {
		total = len(videos)
	}
	return &batchProgress{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Processing videos"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		),
	}
}

// Record is safe to call on a nil receiver so it can be passed around
// unconditionally.
func (b *batchProgress) Record(res utils.ItemResult) {
	if b == nil {
		return
	}
	b.bar.Describe(fmt.Sprintf("%s: %s", filepath.Base(res.VideoFile), res.Outcome))
	_ = b.bar.Add(1)
}

func (b *batchProgress) Finish() {
	if b == nil {
		return
	}
	_ = b.bar.Finish()
	fmt.Fprintln(os.Stderr)
}
