// Package labels manages label file artifacts and waybill merging.
package labels

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind distinguishes the two label artifact types.
type Kind string

const (
	// KindItem is a single-shipment label, keyed by item barcode or AWB.
	KindItem Kind = "item"

	// KindOrder is the merged order-level waybill, keyed by remote order id.
	KindOrder Kind = "order"
)

// FileInfo is the location of a label artifact on disk and its public URL.
type FileInfo struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Storage computes deterministic label file locations under a configured
// directory/URL pair and persists label data there.
type Storage struct {
	dir     string
	baseURL string
	format  string
}

// NewStorage creates a Storage rooted at dir, served at baseURL, holding
// PDF label files.
func NewStorage(dir, baseURL string) *Storage {
	return NewStorageWithFormat(dir, baseURL, "pdf")
}

// NewStorageWithFormat creates a Storage for label files of the given
// format extension, e.g. "pdf" or "zpl".
func NewStorageWithFormat(dir, baseURL, format string) *Storage {
	return &Storage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		format:  format,
	}
}

// FileName returns the deterministic file name for a PDF label artifact.
func FileName(kind Kind, key string) string {
	return fileName(kind, key, "pdf")
}

func fileName(kind Kind, key, format string) string {
	if kind == KindOrder {
		return fmt.Sprintf("dhl-waybill-order-%s.%s", key, format)
	}
	return fmt.Sprintf("dhl-label-%s.%s", key, format)
}

// PathFor resolves the file location for a label artifact. It fails with
// ErrInvalidPath when the key carries path separators or parent references,
// or when the resolved path escapes the storage root. The key check comes
// first: filepath.Join would otherwise clean a leading ".." into the name
// prefix and keep the path inside the root.
func (s *Storage) PathFor(kind Kind, key string) (FileInfo, error) {
	if key != filepath.Base(key) || strings.Contains(key, "..") {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrInvalidPath, key)
	}

	name := fileName(kind, key, s.format)
	path := filepath.Join(s.dir, name)

	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrInvalidPath, name)
	}

	return FileInfo{
		Path: path,
		URL:  s.baseURL + "/" + name,
	}, nil
}

// Save writes label data to its deterministic location, overwriting any
// existing file. Zero bytes written is the save-failure signal.
func (s *Storage) Save(kind Kind, key string, data []byte) (FileInfo, error) {
	info, err := s.PathFor(kind, key)
	if err != nil {
		return FileInfo{}, err
	}

	f, err := os.Create(info.Path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	n, err := f.Write(data)
	if err != nil {
		f.Close()
		return FileInfo{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		return FileInfo{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n == 0 {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrWriteFailed, info.Path)
	}

	return info, nil
}

// Exists reports whether the label artifact is already on disk.
func (s *Storage) Exists(kind Kind, key string) bool {
	info, err := s.PathFor(kind, key)
	if err != nil {
		return false
	}
	_, err = os.Stat(info.Path)
	return err == nil
}

// Delete removes a label artifact. A missing file is a no-op; a file that
// exists but cannot be removed fails with ErrDeleteFailed.
func (s *Storage) Delete(kind Kind, key string) error {
	info, err := s.PathFor(kind, key)
	if err != nil {
		return err
	}

	if _, err := os.Stat(info.Path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(info.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}
