package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore persists uploaded images on local disk and hands back a stable
// reference of the form "/uploads/<name>", served statically by the router.
type DiskStore struct {
	dir    string
	prefix string
}

// NewDiskStore ensures dir exists and returns a store whose references are
// rooted at urlPrefix (e.g. "/uploads").
func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir, prefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Dir returns the directory files are stored in.
func (s *DiskStore) Dir() string { return s.dir }

// Store writes src to disk under a unique name derived from originalName and
// returns the reference to hand to clients.
func (s *DiskStore) Store(src io.Reader, originalName string) (string, error) {
	name := uuid.NewString() + "-" + sanitizeName(originalName)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close blob: %w", err)
	}
	return s.prefix + "/" + name, nil
}

// sanitizeName keeps only the base name and drops path separators so a crafted
// filename cannot escape the uploads dir.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
