package storage

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault-backend/internal/shared"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := imaging.New(width, height, color.NRGBA{R: 120, G: 140, B: 160, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func TestCropFaceThumbnail(t *testing.T) {
	p := NewImageProcessor(64)
	data := encodeJPEG(t, 200, 160)

	box := shared.BoundingBox{X1: 100, Y1: 80, X2: 300, Y2: 240}
	thumb, err := p.CropFaceThumbnail(data, box, 400, 320)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestCropFaceThumbnailBoxAtImageEdge(t *testing.T) {
	p := NewImageProcessor(64)
	data := encodeJPEG(t, 100, 80)

	// The margin pushes the crop window past the right and bottom edges; the
	// clamp must keep it inside instead of failing the render.
	box := shared.BoundingBox{X1: 80, Y1: 60, X2: 100, Y2: 80}
	thumb, err := p.CropFaceThumbnail(data, box, 100, 80)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestCropFaceThumbnailBoxOutsideImage(t *testing.T) {
	p := NewImageProcessor(64)
	data := encodeJPEG(t, 100, 80)

	box := shared.BoundingBox{X1: 400, Y1: 300, X2: 500, Y2: 400}
	_, err := p.CropFaceThumbnail(data, box, 100, 80)
	assert.Error(t, err)
}

func TestCropFaceThumbnailRejectsBadInput(t *testing.T) {
	p := NewImageProcessor(64)

	_, err := p.CropFaceThumbnail(nil, shared.BoundingBox{X2: 10, Y2: 10}, 100, 100)
	assert.Error(t, err)

	_, err = p.CropFaceThumbnail([]byte("not an image"), shared.BoundingBox{X2: 10, Y2: 10}, 100, 100)
	assert.Error(t, err)
}

func TestFaceCropRectScalesAndClamps(t *testing.T) {
	// Detection saw a 400x320 rendition, the decoded image is 200x160.
	rect := faceCropRect(shared.BoundingBox{X1: 100, Y1: 80, X2: 300, Y2: 240}, 400, 320, 200, 160)
	assert.Equal(t, image.Rect(25, 5, 175, 155), rect)

	// A corner box expands past the origin and gets clipped.
	rect = faceCropRect(shared.BoundingBox{X1: 0, Y1: 0, X2: 40, Y2: 40}, 200, 160, 200, 160)
	assert.Equal(t, image.Rect(0, 0, 50, 50), rect)

	// Tiny boxes are widened to a usable minimum.
	rect = faceCropRect(shared.BoundingBox{X1: 100, Y1: 100, X2: 102, Y2: 102}, 200, 200, 200, 200)
	assert.Equal(t, image.Rect(85, 85, 117, 117), rect)
}
