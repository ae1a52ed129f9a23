// Package uploads stores product images on the local filesystem.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotAnImage   = errors.New("only image files are allowed")
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")
)

// allowedExtensions mirrors the storefront's accepted image formats.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store saves uploaded product images under a single directory and serves
// them back by the public path recorded on the product.
type Store struct {
	dir     string
	maxSize int64
	urlBase string
}

// NewStore creates an image store rooted at dir. Saved files are referenced
// publicly as urlBase + "/" + filename (e.g. "/images/product-....jpg").
func NewStore(dir, urlBase string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize, urlBase: strings.TrimSuffix(urlBase, "/")}, nil
}

// Save validates and persists an uploaded image, returning its public path.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrNotAnImage
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	filename := fmt.Sprintf("product-%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1_000_000_000), ext)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return s.urlBase + "/" + filename, nil
}

// Remove deletes a stored image by its public path. Paths outside the store
// are ignored.
func (s *Store) Remove(publicPath string) error {
	name, ok := s.localName(publicPath)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CleanupOrphans deletes stored images not present in the referenced set.
// Runs on a schedule; products deleted or re-imaged leave files behind that
// nothing references anymore.
func (s *Store) CleanupOrphans(referenced []string) (int, error) {
	keep := make(map[string]bool, len(referenced))
	for _, ref := range referenced {
		if name, ok := s.localName(ref); ok {
			keep[name] = true
		}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read uploads dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "product-") {
			continue
		}
		if keep[entry.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Printf("uploads: failed to remove orphan %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	return removed, nil
}

// localName maps a public path back to a filename inside the store.
func (s *Store) localName(publicPath string) (string, bool) {
	if s.urlBase != "" && !strings.HasPrefix(publicPath, s.urlBase+"/") {
		return "", false
	}
	name := filepath.Base(publicPath)
	if name == "." || name == "/" || name == "" {
		return "", false
	}
	return name, true
}
