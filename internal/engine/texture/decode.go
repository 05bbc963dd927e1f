package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Decode errors.
var (
	ErrCorrupt     = errors.New("corrupt image data")
	ErrUnsupported = errors.New("unsupported image format")
)

// Image is decoded pixel data ready for upload. It owns its pixels.
type Image struct {
	Key  string // Path or "<model>#<index>", with "#flip" when rows were reversed
	RGBA *image.RGBA
}

// Width returns the image width in pixels.
func (i *Image) Width() int { return i.RGBA.Bounds().Dx() }

// Height returns the image height in pixels.
func (i *Image) Height() int { return i.RGBA.Bounds().Dy() }

// DecodeFile reads and decodes an image file. It makes no GL calls and is
// safe to run on an import worker.
func DecodeFile(path string, flipY bool) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeBytes(data, path, flipY)
}

// DecodeBytes decodes image data. name is used for format sniffing of TGA
// (which has no magic number) and is the base of the image key.
func DecodeBytes(data []byte, name string, flipY bool) (*Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if errors.Is(err, image.ErrFormat) {
			err = fmt.Errorf("%w: %s", ErrUnsupported, name)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	key := name
	if flipY {
		// Flipped pixels differ, so they must not share a cache entry.
		key += "#flip"
	}
	return &Image{Key: key, RGBA: ImageToRGBA(img, flipY)}, nil
}
