package mentor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/lucasefe/pbimentor/extract"
)

var (
	// ErrNotFound is returned when a submission path does not exist.
	ErrNotFound = extract.ErrNotFound
	// ErrInvalidSubmission is returned for paths that are neither a
	// directory, a zip archive nor a single answer file.
	ErrInvalidSubmission = errors.New("invalid submission")
)

// Extensions of the answer files a submission may contain.
const (
	ExtTemplate = ".pbit"
	ExtVisual   = ".pdf"
	ExtWrite    = ".txt"
	extArchive  = ".zip"
)

// PrepareSubmission resolves a submission path into a working path.
//
// Directories and single answer files (.pbit, .pdf, .txt) are returned as
// they are. Zip archives are extracted into a fresh temporary directory.
// The returned cleanup func removes any scratch space and is safe to call
// on every path, including errors.
func PrepareSubmission(path string) (string, func(), error) {
	noop := func() {}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", noop, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", noop, fmt.Errorf("%w: submission path %s: %w", ErrNotFound, path, err)
	}

	if info.IsDir() {
		return abs, noop, nil
	}

	ext := strings.ToLower(filepath.Ext(abs))
	switch ext {
	case extArchive:
		dir, err := extractArchive(abs)
		if err != nil {
			return "", noop, err
		}
		return dir, func() { os.RemoveAll(dir) }, nil
	case ExtTemplate, ExtVisual, ExtWrite:
		return abs, noop, nil
	default:
		return "", noop, fmt.Errorf("%w: %s must be a directory, a zip archive or a .pbit, .pdf or .txt file (found %q)", ErrInvalidSubmission, path, ext)
	}
}

// FindFileByType returns the first regular file in dir whose extension
// matches ext, ignoring case. Files are considered in name order and
// subdirectories are not searched.
func FindFileByType(dir, ext string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

func extractArchive(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a valid zip archive: %w", ErrInvalidSubmission, path, err)
	}
	defer archive.Close()

	dir, err := os.MkdirTemp("", "pbimentor_submission_")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}

	for _, f := range archive.File {
		if err := extractEntry(dir, f); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

func extractEntry(dir string, f *zip.File) error {
	target := filepath.Join(dir, filepath.FromSlash(f.Name))
	if target != dir && !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
		return fmt.Errorf("%w: archive entry %q escapes the extraction directory", ErrInvalidSubmission, f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %w", ErrInvalidSubmission, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("%w: failed to extract %s: %w", ErrInvalidSubmission, f.Name, err)
	}
	return out.Close()
}
