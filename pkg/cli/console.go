package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
)

// consoleSink renders transfer events as a single updating line
type consoleSink struct {
	w  io.Writer
	mu sync.Mutex
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{w: w}
}

var (
	progressColor = color.New(color.FgCyan)
	finishedColor = color.New(color.FgGreen, color.Bold)
)

func (s *consoleSink) DownloadProgress(ctx context.Context, state model.TransferState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	progressColor.Fprintf(s.w, "\r%s", progressLine(state))
}

func (s *consoleSink) DownloadFinished(ctx context.Context, state model.TransferState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	finishedColor.Fprintf(s.w, "\r%s\n", progressLine(state))
}

func progressLine(state model.TransferState) string {
	return fmt.Sprintf("[%5.1f%%] %s / %s  %s/s",
		state.PercentComplete,
		humanize.Bytes(state.TransferredBytes),
		humanize.Bytes(state.TotalBytes),
		humanize.Bytes(uint64(state.RateBytesPerSec)),
	)
}
