package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

const (
	// dirPermissions is the permission mode for created layout directories.
	dirPermissions = 0750

	// filePermissions is the permission mode for written layout files.
	filePermissions = 0640
)

// FileStore reads and writes layout files.
//
// A layout file holds one column name per line, newline-terminated, with no
// header and no escaping. The encoding is fixed when the store is created
// and must match the encoding of the sensor logs the layout refers to.
type FileStore struct {
	enc encoding.Encoding
}

// NewFileStore creates a FileStore using enc for both directions.
// A nil enc reads and writes UTF-8.
func NewFileStore(enc encoding.Encoding) *FileStore {
	return &FileStore{enc: enc}
}

// Load reads the layout at path.
//
// An empty path means no layout was requested and returns (nil, nil).
// A missing or unreadable file returns an empty selection together with an
// error wrapping ErrResource, so callers can log it and keep going.
// Blank lines are ignored; "\r\n" line endings are accepted.
//
// Parameters:
//   - path: Layout file path
//
// Returns:
//   - sensorlog.Selection: Column names in file order
//   - error: ErrResource (and ErrLayoutNotFound when the file does not exist)
func (s *FileStore) Load(path string) (sensorlog.Selection, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return sensorlog.Selection{}, fmt.Errorf("%w: %w: %s", ErrResource, ErrLayoutNotFound, path)
	}
	if err != nil {
		return sensorlog.Selection{}, fmt.Errorf("%w: opening layout: %w", ErrResource, err)
	}
	defer f.Close()

	sel, err := s.read(f)
	if err != nil {
		return sensorlog.Selection{}, fmt.Errorf("%w: reading %s: %w", ErrResource, path, err)
	}
	return sel, nil
}

func (s *FileStore) read(r io.Reader) (sensorlog.Selection, error) {
	if s.enc != nil {
		r = s.enc.NewDecoder().Reader(r)
	}

	sel := sensorlog.Selection{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSuffix(scanner.Text(), "\r")
		if name == "" {
			continue
		}
		sel = append(sel, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sel, nil
}

// Save writes sel to path, one column name per line.
//
// Missing parent directories are created. An existing file is overwritten
// without warning.
//
// Parameters:
//   - path: Destination file
//   - sel: Column names to store
//
// Returns:
//   - error: ErrInvalidName for names containing line breaks, otherwise
//     ErrResource on any I/O or encoding failure
func (s *FileStore) Save(path string, sel sensorlog.Selection) error {
	for _, name := range sel {
		if err := validateColumnName(name); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating layout directory: %w", ErrResource, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("%w: creating layout: %w", ErrResource, err)
	}

	if err := s.write(f, sel); err != nil {
		f.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("%w: writing %s: %w", ErrResource, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrResource, path, err)
	}
	return nil
}

func (s *FileStore) write(w io.Writer, sel sensorlog.Selection) error {
	var encoded io.Writer
	if s.enc != nil {
		encoded = s.enc.NewEncoder().Writer(w)
		w = encoded
	}

	bw := bufio.NewWriter(w)
	for _, name := range sel {
		if _, err := bw.WriteString(name + "\n"); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	// The encoding writer holds back partial runes until closed.
	if c, ok := encoded.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// validateColumnName rejects names that cannot round-trip through a layout file.
func validateColumnName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty column name", ErrInvalidName)
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: column name %q contains a line break", ErrInvalidName, name)
	}
	return nil
}
