package storage

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"photovault-backend/internal/shared"
)

// maxSourceBytes bounds how much image data the renderer will decode.
const maxSourceBytes = 50 << 20

// cropMargin widens the detected box so the crop shows the whole head, not a
// tightly clipped face.
const cropMargin = 1.5

// ImageProcessor renders square person thumbnails from source images.
type ImageProcessor struct {
	Size int
}

func NewImageProcessor(size int) *ImageProcessor {
	return &ImageProcessor{Size: size}
}

// CropFaceThumbnail decodes the source image, crops the face region, and
// returns a Size x Size JPEG. The bounding box is in the coordinate space of
// the image at detection time; it is rescaled against the decoded dimensions
// before cropping, since previews are often smaller than originals.
func (p *ImageProcessor) CropFaceThumbnail(data []byte, box shared.BoundingBox, detectedWidth, detectedHeight int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if int64(len(data)) > maxSourceBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", int64(maxSourceBytes))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	rect := faceCropRect(box, detectedWidth, detectedHeight, bounds.Dx(), bounds.Dy())
	if rect.Empty() {
		return nil, fmt.Errorf("bounding box %+v is outside the image", box)
	}

	cropped := imaging.Crop(img, rect)
	thumb := imaging.Fill(cropped, p.Size, p.Size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// faceCropRect rescales the detection-time box to the actual image size,
// expands it by cropMargin around its center, and clamps it to the image.
func faceCropRect(box shared.BoundingBox, detectedWidth, detectedHeight, actualWidth, actualHeight int) image.Rectangle {
	scaleX, scaleY := 1.0, 1.0
	if detectedWidth > 0 && detectedHeight > 0 {
		scaleX = float64(actualWidth) / float64(detectedWidth)
		scaleY = float64(actualHeight) / float64(detectedHeight)
	}

	x1 := float64(box.X1) * scaleX
	x2 := float64(box.X2) * scaleX
	y1 := float64(box.Y1) * scaleY
	y2 := float64(box.Y2) * scaleY

	centerX := (x1 + x2) / 2
	centerY := (y1 + y2) / 2

	half := (x2 - x1) / 2
	if h := (y2 - y1) / 2; h > half {
		half = h
	}
	half *= cropMargin
	if half < 16 {
		half = 16
	}

	rect := image.Rect(
		int(centerX-half),
		int(centerY-half),
		int(centerX+half),
		int(centerY+half),
	)
	return rect.Intersect(image.Rect(0, 0, actualWidth, actualHeight))
}
