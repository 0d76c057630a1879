// Package artifact manages the durable store for generated diagram
// files. The local uploads tree is canonical; every file is written once
// under a timestamped name and never modified, so concurrent requests
// need no locking. An optional S3/minio mirror receives best-effort
// copies for off-host retention.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"figment/internal/safeio"
)

var ErrNotFound = errors.New("artifact: not found")

// Kind selects one of the uploads subdirectories.
type Kind string

const (
	KindMarkup Kind = "markup"
	KindSVG    Kind = "svg"
	KindPNG    Kind = "png"
	KindHTML   Kind = "html"
)

var kinds = []Kind{KindMarkup, KindSVG, KindPNG, KindHTML}

// Artifact collects everything the render pipeline produced for one
// diagram. PNGPath stays empty until the detached rasterizer finishes;
// a missing PNG is not an error.
type Artifact struct {
	SourcePath string `json:"source_path"`
	SVGPath    string `json:"svg_path"`
	PNGPath    string `json:"png_path,omitempty"`
	HTMLPath   string `json:"html_path"`
	Title      string `json:"title"`
	AltText    string `json:"alt_text"`
}

// Mirror receives best-effort copies of written artifacts.
type Mirror interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
}

// Store writes artifacts under root/<kind>/ and reads them back through
// a SafeFS so client-supplied names cannot escape the tree.
type Store struct {
	root   string
	fs     *safeio.SafeFS
	mirror Mirror

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStore creates the uploads tree (markup/svg/png/html) under root.
func NewStore(root string, mirror Mirror) (*Store, error) {
	for _, k := range kinds {
		if err := os.MkdirAll(filepath.Join(root, string(k)), 0o755); err != nil {
			return nil, fmt.Errorf("artifact: create %s dir: %w", k, err)
		}
	}
	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, err
	}
	return &Store{
		root:   fsys.Root(),
		fs:     fsys,
		mirror: mirror,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Root returns the absolute uploads root.
func (s *Store) Root() string { return s.root }

// Write persists one artifact file under the kind's subdirectory and
// returns its filename. The name embeds epoch millis plus a random
// suffix; O_EXCL turns the not-overwritten invariant into an error
// instead of silent clobbering.
func (s *Store) Write(ctx context.Context, kind Kind, slug, ext string, content []byte) (string, error) {
	name := s.filename(slug, ext)
	abs := filepath.Join(s.root, string(kind), name)

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("artifact: create %s: %w", name, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", fmt.Errorf("artifact: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("artifact: close %s: %w", name, err)
	}

	if s.mirror != nil {
		key := string(kind) + "/" + name
		if err := s.mirror.Put(ctx, key, content, contentTypeFor(ext)); err != nil {
			log.Printf("artifact: mirror %s: %v", key, err)
		}
	}
	return name, nil
}

// Read returns the content of a stored artifact by kind and filename.
// The name is client-supplied; safeio rejects traversal.
func (s *Store) Read(kind Kind, name string) ([]byte, error) {
	data, err := s.fs.SafeReadFile(filepath.Join(string(kind), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether the named artifact is on disk.
func (s *Store) Exists(kind Kind, name string) bool {
	_, err := s.fs.SafeStat(filepath.Join(string(kind), name))
	return err == nil
}

// Path returns the absolute path for a stored artifact filename.
func (s *Store) Path(kind Kind, name string) string {
	return filepath.Join(s.root, string(kind), name)
}

func (s *Store) filename(slug, ext string) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 4)
	s.mu.Lock()
	for i := range suffix {
		suffix[i] = alphabet[s.rng.Intn(len(alphabet))]
	}
	s.mu.Unlock()
	return fmt.Sprintf("%s_%d_%s.%s",
		Slugify(slug), time.Now().UnixMilli(), suffix, strings.TrimPrefix(ext, "."))
}

// Slugify lowercases and collapses non-alphanumerics to single dashes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "diagram"
	}
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "diagram"
	}
	return out
}

func contentTypeFor(ext string) string {
	switch strings.TrimPrefix(ext, ".") {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "html":
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
