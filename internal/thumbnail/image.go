package thumbnail

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"gallery/internal/models"
)

const imageGeneratorName = "image"

var decodableImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/bmp":  {},
	"image/tiff": {},
}

// ImageGenerator decodes still images, applying EXIF orientation.
type ImageGenerator struct{}

func NewImageGenerator() *ImageGenerator {
	return &ImageGenerator{}
}

func (g *ImageGenerator) Name() string { return imageGeneratorName }

func (g *ImageGenerator) CanHandle(mimeType string) bool {
	_, ok := decodableImageTypes[models.NormalizeMIME(mimeType)]
	return ok
}

func (g *ImageGenerator) Frame(_ context.Context, data []byte, _ string) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}
