package analysis

import (
	"context"
	"errors"
	"image"
	"os"

	"github.com/jmylchreest/shade/internal/face"
	"github.com/jmylchreest/shade/internal/skin"
)

// User-facing failure messages.
const (
	MessageNoFace          = "No face detected. Please ensure your face is clearly visible."
	MessageUnsuitableFace  = "Face not suitable for analysis. Please use a clear, front-facing photo."
	MessageNoSkin          = "Could not read skin tone. Please try with better lighting."
	MessageImageUnreadable = "Image could not be read. Please use a JPEG, PNG, GIF, BMP or WebP file."
	MessageCancelled       = "Analysis cancelled."
	MessageProcessingError = "Analysis failed. Please try again."
)

// UserMessage maps an analysis error to a short message suitable for
// showing to the person who supplied the photo.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, face.ErrNoFace):
		return MessageNoFace
	case errors.Is(err, ErrUnsuitableFace):
		return MessageUnsuitableFace
	case errors.Is(err, skin.ErrNoSamples):
		return MessageNoSkin
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission), errors.Is(err, image.ErrFormat):
		return MessageImageUnreadable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return MessageCancelled
	default:
		return MessageProcessingError
	}
}
