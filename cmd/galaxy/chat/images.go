package chatcmder

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/819SauCe/Galaxy/pkg/llm"
)

// loadImage turns an --image value into an attachment. http(s) and data URLs are
// used as they are; anything else is read as a local image file and inlined as a
// base64 data URL.
func loadImage(ref string) (llm.ImageAttachment, error) {
	if isURL(ref) {
		return llm.ImageAttachment{
			ID:   uuid.NewString(),
			Name: ref,
			URL:  ref,
		}, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return llm.ImageAttachment{}, fmt.Errorf("could not read image: %w", err)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return llm.ImageAttachment{}, fmt.Errorf("%s is not an image (detected %s)", ref, mime.String())
	}

	return llm.ImageAttachment{
		ID:   uuid.NewString(),
		Name: filepath.Base(ref),
		Size: uint64(len(data)),
		URL:  "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

func loadImages(refs []string) ([]llm.ImageAttachment, error) {
	images := make([]llm.ImageAttachment, 0, len(refs))
	for _, ref := range refs {
		img, err := loadImage(ref)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "data:")
}
