package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/jmylchreest/prism/internal/compression"
	"github.com/jmylchreest/prism/internal/mood"
	"github.com/jmylchreest/prism/internal/security"
)

// maxArchiveEntry caps the size of a single imported palette.
const maxArchiveEntry = 1 << 20

// Export writes every entry to w as a tar.xz archive and returns the number
// of entries written.
func (c *Cache) Export(w io.Writer) (int, error) {
	keys, err := c.Entries()
	if err != nil {
		return 0, err
	}

	entries := make([]compression.Entry, 0, len(keys))
	for _, key := range keys {
		p := c.Path(key)
		data, err := afero.ReadFile(c.fs, p)
		if err != nil {
			return 0, fmt.Errorf("failed to read cache entry %s: %w", key, err)
		}
		info, err := c.fs.Stat(p)
		if err != nil {
			return 0, fmt.Errorf("failed to stat cache entry %s: %w", key, err)
		}
		entries = append(entries, compression.Entry{
			Name:    key.Hash + "/" + key.Mood + entryExt,
			Data:    data,
			ModTime: info.ModTime(),
		})
	}

	if err := compression.WriteTarXz(w, entries); err != nil {
		return 0, fmt.Errorf("failed to write cache archive: %w", err)
	}
	return len(entries), nil
}

// Import reads a tar.xz archive produced by Export and stores every entry,
// replacing existing ones. Entries that are not valid palettes abort the import.
func (c *Cache) Import(r io.Reader) (int, error) {
	n := 0
	err := compression.ReadTarXz(r, maxArchiveEntry, func(e compression.Entry) error {
		key, err := keyFromArchiveName(e.Name)
		if err != nil {
			return err
		}
		if err := security.ValidateFilePath(e.Name, c.root); err != nil {
			return err
		}

		var p mood.Palette
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return fmt.Errorf("archive entry %s is not a palette: %w", e.Name, err)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("archive entry %s is not a valid palette: %w", e.Name, err)
		}

		if err := c.Store(key, &p); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to import cache archive: %w", err)
	}
	return n, nil
}

func keyFromArchiveName(name string) (Key, error) {
	dir, file := path.Split(name)
	if !strings.HasSuffix(file, entryExt) || strings.Count(name, "/") != 1 {
		return Key{}, fmt.Errorf("%w: unexpected archive entry %q", ErrInvalidKey, name)
	}
	key := Key{Hash: strings.TrimSuffix(dir, "/"), Mood: strings.TrimSuffix(file, entryExt)}
	if err := key.Validate(); err != nil {
		return Key{}, err
	}
	return key, nil
}
