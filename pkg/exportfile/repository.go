// Package exportfile writes generated import files and reports to disk.
package exportfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
	"github.com/shunichi-ikebuchi/card-reconciler/pkg/pathutil"
)

// Repository defines the interface for export file operations.
type Repository interface {
	// WriteExport writes an import file and returns its path
	WriteExport(cardName string, competency model.Competency, suffix string, data []byte) (string, error)

	// WriteReport writes a report file with the given extension and returns its path
	WriteReport(cardName string, competency model.Competency, ext string, data []byte) (string, error)

	// ListExports lists the import files written for a competency
	ListExports(competency model.Competency) ([]string, error)
}

// FileSystemRepository is a file system implementation of Repository.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
	}
}

// WriteExport writes an import file, replacing any previous file of the same name.
// The bytes are written as given; the serializer already added the BOM.
func (r *FileSystemRepository) WriteExport(cardName string, competency model.Competency, suffix string, data []byte) (string, error) {
	filePath, err := r.pathResolver.GetExportPath(cardName, competency, suffix)
	if err != nil {
		return "", fmt.Errorf("failed to get export file path: %w", err)
	}

	if err := r.write(filePath, data); err != nil {
		return "", err
	}

	return filePath, nil
}

// WriteReport writes a report file.
func (r *FileSystemRepository) WriteReport(cardName string, competency model.Competency, ext string, data []byte) (string, error) {
	filePath, err := r.pathResolver.GetReportPath(cardName, competency, ext)
	if err != nil {
		return "", fmt.Errorf("failed to get report file path: %w", err)
	}

	if err := r.write(filePath, data); err != nil {
		return "", err
	}

	return filePath, nil
}

// ListExports lists the import file names of a competency in name order.
// Returns an empty slice if nothing was exported yet.
func (r *FileSystemRepository) ListExports(competency model.Competency) ([]string, error) {
	dir := r.pathResolver.GetCompetencyDir(competency)
	if !r.pathResolver.FileExists(dir) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read competency directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	return files, nil
}

// write stages the file next to its destination and renames it, so a reader
// never sees a half-written export.
func (r *FileSystemRepository) write(filePath string, data []byte) error {
	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp, filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}
