// Package cache stores generated palettes keyed by image content and mood.
//
// Layout: <root>/<hash>/<mood>.json, where hash is the first 16 hex digits of
// the xxhash64 of the image bytes. Entries are written atomically and replaced
// wholesale; readers never see a partial file.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/jmylchreest/prism/internal/mood"
	"github.com/jmylchreest/prism/internal/security"
)

var (
	// ErrCacheWrite is returned when an entry could not be persisted.
	ErrCacheWrite = errors.New("cache write failure")

	// ErrInvalidKey is returned for malformed hashes or mood names.
	ErrInvalidKey = errors.New("invalid cache key")
)

const (
	hashBufferSize = 64 * 1024
	entryExt       = ".json"
	tempPattern    = ".tmp-*"
)

var hashPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// Key identifies one cache entry.
type Key struct {
	Hash string `json:"hash"`
	Mood string `json:"mood"`
}

// Validate checks that the key maps to a path inside the cache.
func (k Key) Validate() error {
	if !hashPattern.MatchString(k.Hash) {
		return fmt.Errorf("%w: hash %q", ErrInvalidKey, k.Hash)
	}
	if err := security.ValidateName(k.Mood); err != nil {
		return fmt.Errorf("%w: mood: %w", ErrInvalidKey, err)
	}
	return nil
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return k.Hash + "/" + k.Mood
}

// Cache is a content-addressed palette store. It is safe for concurrent use.
type Cache struct {
	fs     afero.Fs
	root   string
	mem    *lru.Cache[Key, *mood.Palette]
	memCap int
	logger hclog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithFs sets the backing filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Cache) { c.fs = fs }
}

// WithMemory keeps up to size recently used palettes in memory. Zero disables it.
func WithMemory(size int) Option {
	return func(c *Cache) { c.memCap = size }
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache rooted at root. The directory is created on first store.
func New(root string, opts ...Option) (*Cache, error) {
	if root == "" {
		return nil, fmt.Errorf("cache root cannot be empty")
	}
	c := &Cache{
		fs:     afero.NewOsFs(),
		root:   filepath.Clean(root),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("cache")

	if c.memCap > 0 {
		mem, err := lru.New[Key, *mood.Palette](c.memCap)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		c.mem = mem
	}
	return c, nil
}

// Root returns the cache directory.
func (c *Cache) Root() string {
	return c.root
}

// Path returns the file that holds key.
func (c *Cache) Path(key Key) string {
	return filepath.Join(c.root, key.Hash, key.Mood+entryExt)
}

// HashReader returns the 16 hex digit content hash of everything read from r.
func HashReader(r io.Reader) (string, error) {
	d := xxhash.New()
	buf := make([]byte, hashBufferSize)
	// Hide WriterTo so the copy goes through buf in bounded chunks.
	if _, err := io.CopyBuffer(d, struct{ io.Reader }{r}, buf); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// HashFile returns the content hash of the file at path.
func (c *Cache) HashFile(path string) (string, error) {
	f, err := c.fs.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return HashReader(f)
}

// KeyFor hashes the image at path and pairs it with moodName.
func (c *Cache) KeyFor(path, moodName string) (Key, error) {
	hash, err := c.HashFile(path)
	if err != nil {
		return Key{}, err
	}
	key := Key{Hash: hash, Mood: moodName}
	if err := key.Validate(); err != nil {
		return Key{}, err
	}
	return key, nil
}

// Lookup returns the palette stored under key. A miss returns false and a nil
// error. An entry that does not decode to a valid palette is logged and
// treated as a miss, so the caller regenerates it.
func (c *Cache) Lookup(key Key) (*mood.Palette, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}
	if c.mem != nil {
		if p, ok := c.mem.Get(key); ok {
			return p.Clone(), true, nil
		}
	}

	data, err := afero.ReadFile(c.fs, c.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	var p mood.Palette
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("ignoring corrupt cache entry", "key", key.String(), "error", err)
		return nil, false, nil
	}
	if err := p.Validate(); err != nil {
		c.logger.Warn("ignoring invalid cache entry", "key", key.String(), "error", err)
		return nil, false, nil
	}
	if c.mem != nil {
		c.mem.Add(key, p.Clone())
	}
	return &p, true, nil
}

// LookupFile hashes path and looks up its palette for moodName.
func (c *Cache) LookupFile(path, moodName string) (*mood.Palette, bool, error) {
	key, err := c.KeyFor(path, moodName)
	if err != nil {
		return nil, false, err
	}
	return c.Lookup(key)
}

// Store persists p under key: the entry is written to a temporary file in the
// same directory and renamed into place. Failures wrap ErrCacheWrite.
// Palette.Warnings is not stored; a later Lookup returns none.
func (c *Cache) Store(key Key, p *mood.Palette) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: nil palette", ErrCacheWrite)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode palette: %w", ErrCacheWrite, err)
	}
	if err := c.writeAtomic(c.Path(key), data); err != nil {
		return err
	}

	if c.mem != nil {
		// Warnings are not persisted; keep the memory copy identical to disk.
		stored := p.Clone()
		stored.Warnings = nil
		c.mem.Add(key, stored)
	}
	c.logger.Debug("stored palette", "key", key.String())
	return nil
}

// StoreFile hashes path and stores p for moodName.
func (c *Cache) StoreFile(path, moodName string, p *mood.Palette) error {
	key, err := c.KeyFor(path, moodName)
	if err != nil {
		return err
	}
	return c.Store(key, p)
}

func (c *Cache) writeAtomic(path string, data []byte) error {
	if err := WriteFileAtomic(c.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers see either the old content or the new, never a mix.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := fsys.Chmod(tmpName, perm); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}

// Entries lists the keys of every complete entry, sorted.
func (c *Cache) Entries() ([]Key, error) {
	dirs, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var keys []Key
	for _, d := range dirs {
		if !d.IsDir() || !hashPattern.MatchString(d.Name()) {
			continue
		}
		files, err := afero.ReadDir(c.fs, filepath.Join(c.root, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read cache directory: %w", err)
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, entryExt) {
				continue
			}
			key := Key{Hash: d.Name(), Mood: strings.TrimSuffix(name, entryExt)}
			if key.Validate() != nil {
				continue
			}
			keys = append(keys, key)
		}
	}

	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys, nil
}

// Purge removes every entry and empties the memory front.
func (c *Cache) Purge() error {
	if c.mem != nil {
		c.mem.Purge()
	}
	if err := c.fs.RemoveAll(c.root); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}
