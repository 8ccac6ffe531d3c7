// =============================================================================
// Payments Portal - File Manager Utility
// =============================================================================
//
// This module provides file management for exported payment documents:
//   - Directory management
//   - Writing export artifacts
//   - Export discovery (for `portal exports list`)
//   - Retention (for `portal exports prune`)
//   - Object key naming for remote delivery
//
// LAYOUT:
//   exports/payment_1760880600123.csv
//   exports/2026/10/19/payment_1760880600123.csv   (UseTimestampSubdirs)
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the export directory.
type FileManager struct {
	// ExportDir is the directory where export documents are written.
	ExportDir string

	// UseTimestampSubdirs creates date-based subdirectories.
	// Example: exports/2026/10/19/payment_1760880600123.csv
	UseTimestampSubdirs bool

	now func() time.Time
}

// NewFileManager creates a new FileManager rooted at exportDir.
func NewFileManager(exportDir string) *FileManager {
	return &FileManager{
		ExportDir: exportDir,
		now:       time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the export directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.ExportDir, err)
	}
	return nil
}

// =============================================================================
// WRITING
// =============================================================================

// WriteExport writes an export document.
//
// PARAMETERS:
//   - name: The file name, e.g. "payment_1760880600123.csv".
//   - body: The document contents.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the file cannot be written.
//
// The document is written to a temporary file and renamed into place, so a
// reader never sees a partial export.
func (fm *FileManager) WriteExport(name string, body []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid export file name: %q", name)
	}

	dir := fm.exportPath()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close export: %w", err)
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return target, nil
}

// exportPath returns the directory the next export is written to.
func (fm *FileManager) exportPath() string {
	if fm.UseTimestampSubdirs {
		now := fm.now()
		return filepath.Join(
			fm.ExportDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}
	return fm.ExportDir
}

// =============================================================================
// DISCOVERY
// =============================================================================

// ExportFile describes one export document on disk.
type ExportFile struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// DiscoverExports lists export documents under the export directory,
// oldest first. A missing directory yields an empty list.
//
// CUSTOMIZATION:
//   - Add filtering by format or age.
func (fm *FileManager) DiscoverExports() ([]ExportFile, error) {
	var files []ExportFile

	err := filepath.Walk(fm.ExportDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == fm.ExportDir {
				return filepath.SkipDir
			}
			return err
		}
		if info.IsDir() || !IsExportFile(info.Name()) {
			return nil
		}
		files = append(files, ExportFile{
			Path:    p,
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk export directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// IsExportFile reports whether name looks like payment_<ms>.csv or .xlsx.
func IsExportFile(name string) bool {
	if !strings.HasPrefix(name, "payment_") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv" || ext == ".xlsx"
}

// =============================================================================
// RETENTION
// =============================================================================

// CleanOldExports removes export documents older than maxAge.
//
// RETURNS:
//   - The number of files removed.
//   - An error if cleaning fails.
func (fm *FileManager) CleanOldExports(maxAge time.Duration) (int, error) {
	files, err := fm.DiscoverExports()
	if err != nil {
		return 0, err
	}

	cutoff := fm.now().Add(-maxAge)
	removed := 0
	for _, f := range files {
		if !f.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(f.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", f.Path, err)
		}
		removed++
	}

	return removed, nil
}

// =============================================================================
// OBJECT NAMING
// =============================================================================

// GenerateObjectKey builds a unique object-store key for an export.
//
// EXAMPLE:
//
//	prefix: "payments", name: "payment_1760880600123.csv"
//	output: "payments/2026/10/19/3f0c...-payment_1760880600123.csv"
func GenerateObjectKey(prefix, name string, now time.Time) string {
	return path.Join(
		prefix,
		now.UTC().Format("2006/01/02"),
		uuid.New().String()+"-"+name,
	)
}

// FileExists checks if a file exists.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return !os.IsNotExist(err)
}
