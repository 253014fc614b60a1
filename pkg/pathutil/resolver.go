// Package pathutil provides centralized path management for export files,
// reports and the local databases.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// ErrOutsideOutputDir is returned when a generated path would leave the output directory.
var ErrOutsideOutputDir = errors.New("path escapes output directory")

// PathResolver manages paths for export files, reports and databases.
type PathResolver struct {
	outputDir    string
	databasePath string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// OutputDir is the directory that receives export files and reports
	OutputDir string
	// DatabasePath is the path to the SQLite database file
	DatabasePath string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {OutputDir}/.recon/reconciler.db
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.OutputDir, ".recon", "reconciler.db")
	}

	return &PathResolver{
		outputDir:    config.OutputDir,
		databasePath: dbPath,
	}
}

// GetOutputDir returns the output directory.
func (p *PathResolver) GetOutputDir() string {
	return p.outputDir
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetCompetencyDir returns the directory for one competency.
// Example: exports/2024-03
func (p *PathResolver) GetCompetencyDir(competency model.Competency) string {
	return filepath.Join(p.outputDir, competency.String())
}

// GetExportPath returns the full path of an export file.
// Example: exports/2024-03/Visa_Corp_Mar2024_pendentes.csv
func (p *PathResolver) GetExportPath(cardName string, competency model.Competency, suffix string) (string, error) {
	if competency.IsZero() {
		return "", fmt.Errorf("invalid competency for card %s", cardName)
	}
	return p.underOutputDir(filepath.Join(p.GetCompetencyDir(competency), ExportFileName(cardName, competency, suffix)))
}

// GetReportPath returns the full path of a report file with the given extension.
// Example: exports/2024-03/Visa_Corp_Mar2024_relatorio.xlsx
func (p *PathResolver) GetReportPath(cardName string, competency model.Competency, ext string) (string, error) {
	if competency.IsZero() {
		return "", fmt.Errorf("invalid competency for card %s", cardName)
	}
	base := strings.TrimSuffix(ExportFileName(cardName, competency, "relatorio"), ".csv")
	ext = strings.Map(safeNameRune, strings.TrimPrefix(ext, "."))
	return p.underOutputDir(filepath.Join(p.GetCompetencyDir(competency), base+"."+ext))
}

func (p *PathResolver) underOutputDir(path string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(p.outputDir), path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideOutputDir, path)
	}
	return path, nil
}

// ExportFileName builds {card}_{Mmm}{YYYY}[_suffix].csv.
// Surrounding whitespace is trimmed and every inner whitespace rune or path
// separator becomes an underscore, so the name never spans directories.
func ExportFileName(cardName string, competency model.Competency, suffix string) string {
	name := strings.Map(safeNameRune, strings.TrimSpace(cardName))
	if suffix == "" {
		return fmt.Sprintf("%s_%s.csv", name, competency.Tag())
	}
	return fmt.Sprintf("%s_%s_%s.csv", name, competency.Tag(), strings.Map(safeNameRune, suffix))
}

func safeNameRune(r rune) rune {
	if unicode.IsSpace(r) || r == '/' || r == '\\' || r == ':' || r == filepath.Separator || r == 0 {
		return '_'
	}
	return r
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
