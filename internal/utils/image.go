package utils

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/nfnt/resize"
)

type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsThumbnailable reports whether a thumbnail can be produced for the MIME type.
func IsThumbnailable(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

// FitDimensions scales width x height down to fit inside maxWidth x maxHeight,
// keeping the aspect ratio. Images already inside the box are returned as-is.
func FitDimensions(width, height, maxWidth, maxHeight uint) (uint, uint) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	widthRatio := float64(maxWidth) / float64(width)
	heightRatio := float64(maxHeight) / float64(height)

	var newWidth, newHeight uint
	if widthRatio < heightRatio {
		newWidth = maxWidth
		newHeight = uint(float64(height) * widthRatio)
	} else {
		newWidth = uint(float64(width) * heightRatio)
		newHeight = maxHeight
	}

	if newWidth == 0 {
		newWidth = 1
	}
	if newHeight == 0 {
		newHeight = 1
	}
	return newWidth, newHeight
}

func ResizeImage(r io.Reader, mimeType string, maxWidth, maxHeight uint) (image.Image, error) {
	img, err := decodeImage(r, mimeType)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	newWidth, newHeight := FitDimensions(uint(bounds.Dx()), uint(bounds.Dy()), maxWidth, maxHeight)
	if newWidth == uint(bounds.Dx()) && newHeight == uint(bounds.Dy()) {
		return img, nil
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3), nil
}

func decodeImage(r io.Reader, mimeType string) (image.Image, error) {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return jpeg.Decode(r)
	case "image/png":
		return png.Decode(r)
	default:
		return nil, ErrUnsupportedImage
	}
}

func EncodeImage(img image.Image, format string, writer io.Writer, quality int) error {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(writer, img)
	default:
		return ErrUnsupportedImage
	}
}

func GenerateThumbnail(r io.Reader, mimeType string) (image.Image, error) {
	return ResizeImage(r, mimeType, ThumbnailMaxWidth, ThumbnailMaxHeight)
}
