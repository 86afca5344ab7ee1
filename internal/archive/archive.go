package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/examplegen/internal"
)

// ErrNothingToArchive is returned when the output file does not exist yet
var ErrNothingToArchive = errors.New("output file does not exist")

// ArchiveOutput moves an existing output file into an "archive" directory
// next to it, named <name>-<timestamp><ext>. It returns the archive path.
func ArchiveOutput(outputPath string) (string, error) {
	info, err := os.Stat(outputPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNothingToArchive, outputPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat output file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("output path is a directory: %s", outputPath)
	}

	archiveDir := filepath.Join(filepath.Dir(outputPath), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(outputPath)
	name := internal.SanitizeFilename(strings.TrimSuffix(filepath.Base(outputPath), ext))

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, timestamp, ext))

	// Add microseconds when two runs archive within the same second
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, timestamp, ext))
	}

	if err := os.Rename(outputPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive output file: %w", err)
	}

	return archivePath, nil
}
