// Package archive moves the accumulated media of past sessions out of
// the way so a new session starts with an empty media directory.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal"
)

// ErrNothingToArchive is returned when the media directory is missing or
// holds no files
var ErrNothingToArchive = errors.New("nothing to archive")

const timestampFormat = "20060102-150405"

// Result describes a finished archive move
type Result struct {
	Path  string
	Files int
}

// ArchiveMedia moves mediaDir to <parent>/archive/<name>-<timestamp>,
// with <name> reduced to filename-safe runes.
// Partial downloads (*.part) are removed instead of archived.
func ArchiveMedia(mediaDir string, now time.Time) (Result, error) {
	mediaDir = filepath.Clean(mediaDir)

	files, err := countMedia(mediaDir)
	if err != nil {
		return Result{}, err
	}
	if files == 0 {
		return Result{}, fmt.Errorf("%w: %s is empty", ErrNothingToArchive, mediaDir)
	}

	archiveDir := filepath.Join(filepath.Dir(mediaDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := internal.SanitizeFilename(filepath.Base(mediaDir))
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, now.Format(timestampFormat)))
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, now.Format(timestampFormat+".000000")))
	}

	if err := os.Rename(mediaDir, archivePath); err != nil {
		return Result{}, fmt.Errorf("failed to archive media directory: %w", err)
	}

	return Result{Path: archivePath, Files: files}, nil
}

// countMedia counts the finished media files and drops partial ones
func countMedia(dir string) (int, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s does not exist", ErrNothingToArchive, dir)
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	count := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if filepath.Ext(path) == ".part" {
			return os.Remove(path)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan media directory: %w", err)
	}
	return count, nil
}
