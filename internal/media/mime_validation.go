package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

var allowedExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

const allowedDescription = "jpeg, jpg, png, gif, webp"

// checkFileType requires both the extension and the declared content type to be an image we decode.
func checkFileType(filename, contentType string) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("extension %q not allowed", ext)
	}
	mediaType, err := sniffMimeType(contentType)
	if err != nil {
		return err
	}
	if _, ok := allowedMimeTypes[mediaType]; !ok {
		return fmt.Errorf("mime type %q not allowed", mediaType)
	}
	return nil
}

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}
