package thumbnail

import (
	"fmt"
	"image"

	"github.com/EdlinOrg/prominentcolor"
)

// DominantColor returns the most prominent color of img as "#rrggbb", or ""
// when none can be determined.
func DominantColor(img image.Image) (hex string) {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	// prominentcolor panics on some degenerate inputs.
	defer func() {
		if recover() != nil {
			hex = ""
		}
	}()

	colors, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil || len(colors) == 0 {
		return ""
	}
	c := colors[0].Color
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
