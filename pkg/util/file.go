package util

import (
	"compress/bzip2"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type filteredReader struct {
	cmd *exec.Cmd
	r   io.ReadCloser
}

func (fr *filteredReader) Read(p []byte) (n int, err error) {
	return fr.r.Read(p)
}

func (fr *filteredReader) Close() error {
	return errors.Join(fr.r.Close(), fr.cmd.Wait())
}

func filterByCommand(r io.Reader, args []string) (io.ReadCloser, error) {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = r
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &filteredReader{cmd: cmd, r: stdout}, nil
}

// decodedFile closes both the decoder and the underlying file.
type decodedFile struct {
	io.Reader
	closers []io.Closer
}

func (d *decodedFile) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type filterFunc func(r io.Reader) (io.ReadCloser, error)

var fileTypes = map[string]filterFunc{
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	},
	".bz2": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(bzip2.NewReader(r)), nil
	},
	".xz": func(r io.Reader) (io.ReadCloser, error) {
		return filterByCommand(r, []string{"xz", "-cd", "-T", "0"})
	},
}

// IsCompressed reports whether filename has an extension OpenFile decodes.
func IsCompressed(filename string) bool {
	_, ok := fileTypes[filepath.Ext(filename)]
	return ok
}

func OpenFile(filename string) (io.ReadCloser, error) {
	return OpenFileObserved(filename, nil)
}

// OpenFileObserved is OpenFile with every raw (still compressed) byte read
// from disk also written to observer.
func OpenFileObserved(filename string, observer io.Writer) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	var raw io.Reader = f
	if observer != nil {
		raw = io.TeeReader(f, observer)
	}
	filter, ok := fileTypes[filepath.Ext(filename)]
	if !ok {
		return &decodedFile{Reader: raw, closers: []io.Closer{f}}, nil
	}
	dec, err := filter(raw)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &decodedFile{Reader: dec, closers: []io.Closer{dec, f}}, nil
}
