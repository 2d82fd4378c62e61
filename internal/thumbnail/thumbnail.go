// Package thumbnail derives bounded JPEG previews from media payloads.
//
// Derivation never fails an ingestion: a payload that cannot be previewed
// yields a nil Result. Only context cancellation is reported as an error.
package thumbnail

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
)

const (
	DefaultMaxEdge     = 400
	DefaultQuality     = 80
	DefaultFrameOffset = time.Second
)

// Result is one derived preview.
type Result struct {
	Data      []byte
	Width     int
	Height    int
	Color     string
	Generator string
}

// Deriver produces a preview for a payload, or nil when none can be made.
type Deriver interface {
	Derive(ctx context.Context, data []byte, mimeType string) (*Result, error)
}

// Generator extracts a source frame from one family of payloads.
type Generator interface {
	Name() string
	CanHandle(mimeType string) bool
	Frame(ctx context.Context, data []byte, mimeType string) (image.Image, error)
}

// Options tunes preview output.
type Options struct {
	MaxEdge     int
	Quality     int
	FFmpegPath  string
	FrameOffset time.Duration
	Logger      *slog.Logger
}

// Service runs generators in order and encodes the first frame produced.
type Service struct {
	generators []Generator
	maxEdge    int
	quality    int
	logger     *slog.Logger
}

var _ Deriver = (*Service)(nil)

// New builds the default pipeline: still images, then ffmpeg video frames,
// then artwork embedded in container metadata.
func New(opts Options) *Service {
	opts = normalizeOptions(opts)
	return NewWithGenerators(opts,
		NewImageGenerator(),
		NewFFmpegGenerator(opts.FFmpegPath, opts.FrameOffset, opts.Logger),
		NewEmbeddedArtGenerator(),
	)
}

// NewWithGenerators builds a service over an explicit generator chain.
func NewWithGenerators(opts Options, generators ...Generator) *Service {
	opts = normalizeOptions(opts)
	return &Service{
		generators: generators,
		maxEdge:    opts.MaxEdge,
		quality:    opts.Quality,
		logger:     opts.Logger.With("component", "thumbnail"),
	}
}

// Derive returns a JPEG preview whose longer edge is at most MaxEdge. Video
// frames keep their native resolution.
func (s *Service) Derive(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	for _, g := range s.generators {
		if !g.CanHandle(mimeType) {
			continue
		}
		frame, err := g.Frame(ctx, data, mimeType)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil || frame == nil {
			s.logger.Debug("generator produced no frame", "generator", g.Name(), "mime_type", mimeType, "error", err)
			continue
		}

		if g.Name() != ffmpegGeneratorName {
			frame = imaging.Fit(frame, s.maxEdge, s.maxEdge, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, frame, imaging.JPEG, imaging.JPEGQuality(s.quality)); err != nil {
			s.logger.Debug("encode preview failed", "generator", g.Name(), "error", err)
			continue
		}

		bounds := frame.Bounds()
		return &Result{
			Data:      buf.Bytes(),
			Width:     bounds.Dx(),
			Height:    bounds.Dy(),
			Color:     DominantColor(frame),
			Generator: g.Name(),
		}, nil
	}
	return nil, nil
}

func normalizeOptions(opts Options) Options {
	if opts.MaxEdge <= 0 {
		opts.MaxEdge = DefaultMaxEdge
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.FrameOffset < 0 {
		opts.FrameOffset = DefaultFrameOffset
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}
