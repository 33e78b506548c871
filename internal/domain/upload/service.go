package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	MaxAvatarSize = 5 * 1024 * 1024
	AvatarFolder  = "avatars"
)

// AllowedImageTypes lists the accepted avatar formats.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Service validates images before handing them to the store.
type Service struct {
	store   Store
	maxSize int64
}

func NewService(store Store) *Service {
	return &Service{store: store, maxSize: MaxAvatarSize}
}

// Avatar uploads the user's avatar, replacing any previous one, and returns
// its URL.
func (s *Service) Avatar(ctx context.Context, userID int64, fh *multipart.FileHeader) (string, error) {
	if fh.Size == 0 {
		return "", ErrEmptyFile
	}
	if fh.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// Detect MIME type from the first 512 bytes.
	buf := make([]byte, 512)
	n, _ := io.ReadFull(file, buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedImageTypes[mimeType] {
		return "", ErrInvalidMimeType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	return s.store.Put(ctx, file, AvatarFolder, fmt.Sprintf("user-%d", userID))
}
