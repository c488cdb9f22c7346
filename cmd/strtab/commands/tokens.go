package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// maxTokenSize bounds a single whitespace-separated token.
const maxTokenSize = 1 << 20

type readerFunc func() io.Reader

// scanTokens calls fn for every whitespace-separated token in paths, or in
// stdin when no path is given. The token slice is only valid during fn.
func scanTokens(fs afero.Fs, stdin readerFunc, paths []string, fn func([]byte) error) error {
	if len(paths) == 0 {
		return scanReader(stdin(), "stdin", fn)
	}

	for _, path := range paths {
		err := scanFile(fs, path, fn)
		if err != nil {
			return err
		}
	}

	return nil
}

func scanFile(fs afero.Fs, path string, fn func([]byte) error) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return scanReader(f, path, fn)
}

func scanReader(r io.Reader, name string, fn func([]byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxTokenSize)
	sc.Split(bufio.ScanWords)

	for sc.Scan() {
		err := fn(sc.Bytes())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	err := sc.Err()
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	return nil
}

// collectTokens returns every token of the inputs as strings.
func collectTokens(fs afero.Fs, stdin readerFunc, paths []string) ([]string, error) {
	var out []string

	err := scanTokens(fs, stdin, paths, func(tok []byte) error {
		out = append(out, string(tok))

		return nil
	})

	return out, err
}
