package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "finstmt/internal/errors"
)

// WorkbookInfo describes one discovered spreadsheet file.
type WorkbookInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates workbook files under a base directory.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative directories
// passed to the find methods are resolved against it.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindWorkbooks returns every .xlsx/.xls file directly under dir, sorted by
// name. Excel lock files ("~$...") are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]WorkbookInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read input directory", err).
			WithContext("dir", fullPath)
	}

	var found []WorkbookInfo
	for _, entry := range entries {
		if entry.IsDir() || !isWorkbookName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, WorkbookInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// Resolve expands a single input path: a workbook file becomes a one-element
// list, a directory is scanned with FindWorkbooks.
func (d *Discovery) Resolve(path string) ([]WorkbookInfo, error) {
	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(d.basePath, path)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("input path not accessible", err).
			WithContext("path", fullPath)
	}
	if info.IsDir() {
		return d.FindWorkbooks(fullPath)
	}
	if !isWorkbookName(info.Name()) {
		return nil, apperrors.NewValidationError("input file is not a workbook: " + fullPath)
	}
	return []WorkbookInfo{{
		Path:    fullPath,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}}, nil
}

func isWorkbookName(name string) bool {
	if strings.HasPrefix(name, "~$") {
		return false
	}
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}
