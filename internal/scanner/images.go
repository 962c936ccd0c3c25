package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ozolsandis/peoplebook-backend/internal/domain"
	"github.com/ozolsandis/peoplebook-backend/internal/platform/logger"
)

// Files under this size are treated as corrupt placeholders and dropped.
const minImageBytes = 1024

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// CollectImages lists the images/ subdirectory of a subject directory and
// builds ordered descriptors for every valid image file. A missing directory
// yields an empty list, not an error.
func CollectImages(subjectDir, dirName, displayName string, log *logger.Logger) []domain.ImageDescriptor {
	imagesDir := filepath.Join(subjectDir, "images")
	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Could not read images directory", "dir", imagesDir, "error", err)
		}
		return []domain.ImageDescriptor{}
	}

	images := []domain.ImageDescriptor{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isSidecar(name) || !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Warn("Could not stat image file", "file", name, "error", err)
			continue
		}
		if info.Size() < minImageBytes {
			log.Debug("Dropping undersized image", "file", name, "size", info.Size())
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		images = append(images, domain.ImageDescriptor{
			Filename:     name,
			Path:         "/media/people/" + dirName + "/images/" + name,
			FullPath:     filepath.Join(imagesDir, name),
			Alt:          displayName + " " + stem,
			Size:         info.Size(),
			LastModified: info.ModTime(),
			Order:        len(images),
		})
	}
	return images
}

// isSidecar filters filesystem artifacts that ride along in image folders.
func isSidecar(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "._") {
		return true
	}
	return strings.EqualFold(name, "Thumbs.db") || strings.EqualFold(name, "desktop.ini")
}
