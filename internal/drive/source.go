package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FolderSource exposes a Drive folder as an import source. XLSX workbooks are
// listed under their CSV name and converted on open.
type FolderSource struct {
	service  *Service
	folderID string

	mu    sync.Mutex
	files map[string]*File
}

func NewFolderSource(service *Service, folderID string) *FolderSource {
	return &FolderSource{service: service, folderID: folderID}
}

func (s *FolderSource) List(ctx context.Context) ([]string, error) {
	files, err := s.service.ListFiles(ctx, s.folderID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*File, len(files))

	names := make([]string, 0, len(files))
	for _, f := range files {
		name, ok := csvName(f)
		if !ok {
			continue
		}
		s.files[name] = f
		names = append(names, name)
	}
	return names, nil
}

func (s *FolderSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	f, ok := s.files[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s is not in folder %s", name, s.folderID)
	}
	return s.service.OpenCSV(ctx, f)
}

// OpenCSV downloads f to a temp file, converting XLSX workbooks on the way.
// The temp file is removed on Close.
func (s *Service) OpenCSV(ctx context.Context, f *File) (io.ReadCloser, error) {
	tmp, err := os.CreateTemp("", "drive-*.csv")
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if isXLSX(f) {
		var buf bytes.Buffer
		if err := s.DownloadFile(ctx, f.ID, &buf); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		if err := convertXLSXToCSV(&buf, tmp); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
		}
	} else if err := s.DownloadFile(ctx, f.ID, tmp); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, err
	}
	return &tempFile{File: tmp}, nil
}

type tempFile struct {
	*os.File
}

func (f *tempFile) Close() error {
	err := f.File.Close()
	os.Remove(f.File.Name())
	return err
}

func isXLSX(f *File) bool {
	return f.MimeType == xlsxMimeType || strings.EqualFold(filepath.Ext(f.Name), ".xlsx")
}

// csvName returns the name f is imported under, or false for files that are
// neither CSV nor XLSX.
func csvName(f *File) (string, bool) {
	if f.MimeType == folderMimeType {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	switch {
	case ext == ".csv":
		return f.Name, true
	case isXLSX(f):
		return strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".csv", true
	default:
		return "", false
	}
}
