package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// imageTypesByExtension lists the raster formats accepted for upload
var imageTypesByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// IsRasterImage checks if the filename has an accepted image extension
func IsRasterImage(filename string) bool {
	_, ok := imageTypesByExtension[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// IsSupportedImageType checks the declared MIME type against the raster formats we accept
func IsSupportedImageType(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for _, supported := range imageTypesByExtension {
		if mt == supported {
			return true
		}
	}
	return false
}

// SanitizeFilename makes a client filename safe to embed in an object key:
// path separators are dropped and spaces become underscores
func SanitizeFilename(filename string) string {
	name := strings.NewReplacer("/", "", "\\", "").Replace(filename)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" {
		name = "file"
	}
	return name
}

// GenerateObjectKey builds a collision-free storage key for an image of a dataset
// in the form datasets/{dataset_id}/images/{uuid}_{filename}
func GenerateObjectKey(datasetID uint, filename string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID for object key: %w", err)
	}
	return fmt.Sprintf("datasets/%d/images/%s_%s", datasetID, id.String(), SanitizeFilename(filename)), nil
}
