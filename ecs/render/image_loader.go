package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrImageNotFound = errors.New("render: image not found")
	ErrImageTooLarge = errors.New("render: image too large")
	ErrBadDataURI    = errors.New("render: malformed data uri")
	ErrOutsideRoots  = errors.New("render: image path outside loader roots")
)

const (
	defaultMaxImageBytes = 16 << 20
	defaultMaxCached     = 32
)

// Loader resolves fill image references into decoded images. A reference is
// an http(s) URL, a base64 data URI or a file path. Relative paths are looked
// up under each root; absolute paths must lie inside one. The most recently
// decoded images are cached by reference, oldest evicted first.
type Loader struct {
	client    *http.Client
	roots     []string
	maxBytes  int64
	maxCached int

	mu    sync.Mutex
	cache map[uint64]image.Image
	order []uint64
}

func NewLoader(client *http.Client, roots ...string) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		client:    client,
		roots:     roots,
		maxBytes:  defaultMaxImageBytes,
		maxCached: defaultMaxCached,
		cache:     make(map[uint64]image.Image),
	}
}

// Load returns the decoded image for ref. It is safe for concurrent use.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty image ref: %w", ErrImageNotFound)
	}
	key := xxhash.Sum64String(ref)
	l.mu.Lock()
	img, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return img, nil
	}

	data, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", shortRef(ref), err)
	}

	l.mu.Lock()
	l.store(key, img)
	l.mu.Unlock()
	return img, nil
}

// Forget drops a cached image.
func (l *Loader) Forget(ref string) {
	l.mu.Lock()
	l.drop(xxhash.Sum64String(ref))
	l.mu.Unlock()
}

// Cached reports how many decoded images are held.
func (l *Loader) Cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

// store must be called with mu held.
func (l *Loader) store(key uint64, img image.Image) {
	if l.maxCached <= 0 {
		return
	}
	if _, ok := l.cache[key]; !ok {
		l.order = append(l.order, key)
	}
	l.cache[key] = img
	for len(l.order) > l.maxCached {
		delete(l.cache, l.order[0])
		l.order = l.order[1:]
	}
}

func (l *Loader) drop(key uint64) {
	if _, ok := l.cache[key]; !ok {
		return
	}
	delete(l.cache, key)
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetchHTTP(ctx, ref)
	default:
		return l.fetchFile(ref)
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	if _, err := url.Parse(ref); err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch image %s: %w", ref, ErrImageNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %s: status %d", ref, resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) fetchFile(ref string) ([]byte, error) {
	tried, err := l.candidates(ref)
	if err != nil {
		return nil, err
	}
	for _, p := range tried {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		data, err := l.readLimited(f)
		_ = f.Close()
		return data, err
	}
	return nil, fmt.Errorf("open image %s: %w", ref, ErrImageNotFound)
}

// candidates lists the paths ref may name. Refs come from remote peers too,
// so nothing outside the roots is ever opened.
func (l *Loader) candidates(ref string) ([]string, error) {
	p := filepath.FromSlash(ref)
	if filepath.IsAbs(p) {
		p = filepath.Clean(p)
		for _, root := range l.roots {
			abs, err := filepath.Abs(root)
			if err != nil {
				continue
			}
			if rel, err := filepath.Rel(abs, p); err == nil && filepath.IsLocal(rel) {
				return []string{p}, nil
			}
		}
		return nil, fmt.Errorf("open image %s: %w", ref, ErrOutsideRoots)
	}
	if !filepath.IsLocal(p) {
		return nil, fmt.Errorf("open image %s: %w", ref, ErrOutsideRoots)
	}
	tried := make([]string, 0, len(l.roots))
	for _, root := range l.roots {
		tried = append(tried, filepath.Join(root, p))
	}
	return tried, nil
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>.
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, ErrBadDataURI
	}
	if !strings.HasSuffix(meta, ";base64") {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
		}
		return []byte(unescaped), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return data, nil
}

func shortRef(ref string) string {
	if len(ref) > 48 {
		return ref[:48] + "..."
	}
	return ref
}
