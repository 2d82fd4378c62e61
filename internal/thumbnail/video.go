package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/disintegration/imaging"

	"gallery/internal/models"
)

const (
	ffmpegGeneratorName      = "ffmpeg"
	embeddedArtGeneratorName = "embedded-art"
	ffmpegJPEGQualityScale   = "3"
)

// FFmpegGenerator grabs one frame from a video with the ffmpeg CLI.
type FFmpegGenerator struct {
	path   string
	offset time.Duration
	logger *slog.Logger
}

// NewFFmpegGenerator resolves the ffmpeg binary. An empty configured path
// searches PATH. When no binary is found the generator handles nothing.
func NewFFmpegGenerator(configured string, offset time.Duration, logger *slog.Logger) *FFmpegGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &FFmpegGenerator{offset: offset, logger: logger}

	configured = strings.TrimSpace(configured)
	if configured == "" {
		configured = "ffmpeg"
	}
	found, err := exec.LookPath(configured)
	if err != nil {
		logger.Debug("ffmpeg not available, video frames disabled", "path", configured, "error", err)
		return g
	}
	g.path = found
	return g
}

func (g *FFmpegGenerator) Name() string { return ffmpegGeneratorName }

// Available reports whether an ffmpeg binary was found.
func (g *FFmpegGenerator) Available() bool { return g.path != "" }

func (g *FFmpegGenerator) CanHandle(mimeType string) bool {
	return g.Available() && strings.HasPrefix(models.NormalizeMIME(mimeType), "video/")
}

// Frame seeks to the configured offset. Clips shorter than the offset yield
// no output there, so the first frame is tried next.
func (g *FFmpegGenerator) Frame(ctx context.Context, data []byte, _ string) (image.Image, error) {
	// ffmpeg needs a seekable input for containers that keep their index at
	// the end of the file.
	tmp, err := os.CreateTemp("", "gallery-video-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	offsets := []time.Duration{g.offset}
	if g.offset > 0 {
		offsets = append(offsets, 0)
	}
	var lastErr error
	for _, offset := range offsets {
		out, err := g.grab(ctx, tmp.Name(), offset)
		if err != nil {
			lastErr = err
			continue
		}
		if len(out) == 0 {
			lastErr = fmt.Errorf("ffmpeg produced no frame at %s", offset)
			continue
		}
		return imaging.Decode(bytes.NewReader(out))
	}
	return nil, lastErr
}

func (g *FFmpegGenerator) grab(ctx context.Context, src string, offset time.Duration) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.path,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64),
		"-i", src,
		"-frames:v", "1",
		"-q:v", ffmpegJPEGQualityScale,
		"-f", "mjpeg",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// EmbeddedArtGenerator extracts cover artwork stored in MP4/MOV metadata.
type EmbeddedArtGenerator struct{}

func NewEmbeddedArtGenerator() *EmbeddedArtGenerator {
	return &EmbeddedArtGenerator{}
}

func (g *EmbeddedArtGenerator) Name() string { return embeddedArtGeneratorName }

func (g *EmbeddedArtGenerator) CanHandle(mimeType string) bool {
	return strings.HasPrefix(models.NormalizeMIME(mimeType), "video/")
}

func (g *EmbeddedArtGenerator) Frame(_ context.Context, data []byte, _ string) (image.Image, error) {
	meta, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	pic := meta.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, fmt.Errorf("no embedded artwork")
	}
	return imaging.Decode(bytes.NewReader(pic.Data))
}
