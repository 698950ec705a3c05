// Package compression reads and writes the tar.xz archives used to move the
// palette cache between machines.
package compression

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/prism/internal/security"
)

// Entry is one regular file in an archive.
type Entry struct {
	// Name is a slash-separated relative path.
	Name    string
	Data    []byte
	ModTime time.Time
}

// WriteTarXz writes entries as an xz-compressed tar stream.
func WriteTarXz(w io.Writer, entries []Entry) error {
	xzw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	for _, e := range entries {
		if err := security.ValidateArchivePath(e.Name); err != nil {
			return fmt.Errorf("invalid archive entry %q: %w", e.Name, err)
		}
		modTime := e.ModTime
		if modTime.IsZero() {
			modTime = time.Unix(0, 0)
		}
		header := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.Name,
			Mode:     0o644,
			Size:     int64(len(e.Data)),
			ModTime:  modTime,
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header: %w", err)
		}
		if _, err := tw.Write(e.Data); err != nil {
			return fmt.Errorf("failed to write tar entry: %w", err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("failed to close xz writer: %w", err)
	}
	return nil
}

// ReadTarXz walks the regular files of an xz-compressed tar stream, calling fn
// for each. Entry names are validated against traversal and entries larger
// than maxEntry bytes abort the walk.
func ReadTarXz(r io.Reader, maxEntry int64, fn func(Entry) error) error {
	xzr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}
	tr := tar.NewReader(xzr)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar archive: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := security.ValidateArchivePath(header.Name); err != nil {
			return fmt.Errorf("invalid archive entry %q: %w", header.Name, err)
		}
		if header.Size > maxEntry {
			return fmt.Errorf("archive entry %q is %d bytes: %w", header.Name, header.Size, security.ErrSizeLimit)
		}

		// One extra byte so a full-size entry reaches EOF before the limit.
		data, err := io.ReadAll(security.NewLimitedReader(tr, maxEntry+1))
		if err != nil {
			return fmt.Errorf("failed to read archive entry %q: %w", header.Name, err)
		}

		if err := fn(Entry{Name: header.Name, Data: data, ModTime: header.ModTime}); err != nil {
			return err
		}
	}
}
