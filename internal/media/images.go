package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/webp"
)

const (
	blurWidth  = 16
	blurRadius = 2
)

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// fitWidth scales img down to width, keeping the aspect ratio. Smaller images are kept as is.
func fitWidth(img image.Image, width int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= width || w == 0 {
		return img
	}
	height := max(1, h*width/w)
	return transform.Resize(img, width, height, transform.Linear)
}

// Thumbnail renders img as a JPEG no wider than width.
func Thumbnail(img image.Image, width int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitWidth(img, width), &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BlurDataURL renders a tiny blurred JPEG placeholder as a data URL.
func BlurDataURL(img image.Image) (string, error) {
	small := fitWidth(img, blurWidth)
	blurred := blur.Gaussian(small, blurRadius)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, blurred, &jpeg.Options{Quality: 70}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
