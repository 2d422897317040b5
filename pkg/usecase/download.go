package usecase

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultFileName is used when the download URL has no usable last segment
	DefaultFileName = "phunk.zip"

	defaultChunkSize = 32 * 1024
	progressInterval = time.Second
)

type downloadUseCase struct {
	fetcher     interfaces.PageFetcher
	outputDir   string
	defaultName string
	chunkSize   int
	now         func() time.Time
}

// DownloadOption is a functional option for the download use case
type DownloadOption func(*downloadUseCase)

// WithOutputDir sets the destination directory. When empty, the user's
// Downloads directory is used, or the working directory if that is missing.
func WithOutputDir(dir string) DownloadOption {
	return func(uc *downloadUseCase) {
		uc.outputDir = dir
	}
}

// WithDefaultFileName sets the fallback file name
func WithDefaultFileName(name string) DownloadOption {
	return func(uc *downloadUseCase) {
		if name != "" {
			uc.defaultName = name
		}
	}
}

// WithChunkSize sets the read buffer size
func WithChunkSize(n int) DownloadOption {
	return func(uc *downloadUseCase) {
		if n > 0 {
			uc.chunkSize = n
		}
	}
}

// WithClock replaces time.Now for elapsed time and progress throttling
func WithClock(now func() time.Time) DownloadOption {
	return func(uc *downloadUseCase) {
		uc.now = now
	}
}

// NewDownload creates a new instance of DownloadUseCase
func NewDownload(fetcher interfaces.PageFetcher, opts ...DownloadOption) interfaces.DownloadUseCase {
	uc := &downloadUseCase{
		fetcher:     fetcher,
		defaultName: DefaultFileName,
		chunkSize:   defaultChunkSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// DownloadFile streams rawURL into the destination directory. The transfer
// fails when the response has no Content-Length, or when fewer bytes than
// declared arrive. Partial files are removed on failure, except when ctx is
// cancelled: the partial file is then left for the caller and its path is
// attached to the returned error.
func (uc *downloadUseCase) DownloadFile(ctx context.Context, rawURL string, sink interfaces.EventSink) (*model.DownloadResult, error) {
	logger := ctxlog.From(ctx)
	if sink == nil {
		sink = nopSink{}
	}

	target := CleanURL(rawURL)
	if target == "" {
		return nil, goerr.Wrap(model.ErrEmptyURL, "no download URL given")
	}

	resp, err := uc.fetcher.Open(ctx, target)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to start download")
	}
	defer resp.Body.Close()

	if resp.ContentLength <= 0 {
		return nil, goerr.Wrap(model.ErrUnknownLength, "refusing transfer of unknown size",
			goerr.V("content_length", resp.ContentLength))
	}

	var finalURL *url.URL
	if resp.Request != nil {
		finalURL = resp.Request.URL
	}
	if finalURL == nil {
		if finalURL, err = url.Parse(target); err != nil {
			return nil, goerr.Wrap(model.RedactURLError(err), "invalid download URL")
		}
	}

	path := filepath.Join(uc.destinationDir(), FileNameFromURL(finalURL, uc.defaultName))
	state := &model.TransferState{
		ID:         uuid.NewString(),
		TotalBytes: uint64(resp.ContentLength),
	}

	logger.Info("Starting download",
		"id", state.ID,
		"path", path,
		"total_bytes", state.TotalBytes,
	)

	if err := uc.stream(ctx, resp.Body, path, state, sink); err != nil {
		if ctx.Err() != nil {
			return nil, goerr.Wrap(err, "download cancelled", goerr.V("partial_file", path))
		}
		removePartial(ctx, path)
		return nil, err
	}

	if state.Completed() {
		sink.DownloadFinished(ctx, *state)
	}

	if state.TransferredBytes == 0 || state.TransferredBytes < state.TotalBytes {
		removePartial(ctx, path)
		return nil, goerr.Wrap(model.ErrSizeMismatch, "download ended early",
			goerr.V("declared", state.TotalBytes),
			goerr.V("written", state.TransferredBytes),
		)
	}

	logger.Info("Download completed",
		"id", state.ID,
		"path", path,
		"bytes", state.TransferredBytes,
	)

	return &model.DownloadResult{
		ID:    state.ID,
		Path:  path,
		Bytes: state.TransferredBytes,
	}, nil
}

// stream copies body into a new file at path chunk by chunk, updating state
// after each chunk and emitting progress at most once per interval.
func (uc *downloadUseCase) stream(ctx context.Context, body io.Reader, path string, state *model.TransferState, sink interfaces.EventSink) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file", goerr.V("path", path))
	}
	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = goerr.Wrap(e, "failed to close destination file", goerr.V("path", path))
		}
	}()

	start := uc.now()
	lastEmit := start
	buf := make([]byte, uc.chunkSize)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return goerr.Wrap(err, "failed to write chunk", goerr.V("path", path))
			}

			now := uc.now()
			state.TransferredBytes += uint64(n)
			state.PercentComplete = model.Percent(state.TransferredBytes, state.TotalBytes)
			if elapsed := now.Sub(start).Seconds(); elapsed > 0 {
				state.RateBytesPerSec = float64(state.TransferredBytes) / elapsed
			}

			if now.Sub(lastEmit) >= progressInterval {
				sink.DownloadProgress(ctx, *state)
				lastEmit = now
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return goerr.Wrap(readErr, "failed to read chunk", goerr.V("transferred", state.TransferredBytes))
		}
	}
}

func (uc *downloadUseCase) destinationDir() string {
	if uc.outputDir != "" {
		return uc.outputDir
	}
	return DefaultDownloadDir()
}

// DefaultDownloadDir returns ~/Downloads when it exists, otherwise ".".
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(home, "Downloads")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "."
	}
	return dir
}

// CleanURL strips quote characters and surrounding spaces. Resolved links
// sometimes arrive still wrapped in JSON quotes.
func CleanURL(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
}

// FileNameFromURL returns the last path segment of u, or fallback when the
// segment is empty or not a plain file name.
func FileNameFromURL(u *url.URL, fallback string) string {
	p := u.Path
	name := p[strings.LastIndex(p, "/")+1:]
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `\`) {
		return fallback
	}
	return name
}

func removePartial(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		ctxlog.From(ctx).Warn("Failed to remove partial file", "path", path, "error", err)
	}
}

type nopSink struct{}

func (nopSink) DownloadProgress(context.Context, model.TransferState) {}
func (nopSink) DownloadFinished(context.Context, model.TransferState) {}
