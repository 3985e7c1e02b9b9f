package txbench

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ReadKeyCorpus reads the first n newline-delimited keys from r.
// A trailing carriage return is dropped from every key.
func ReadKeyCorpus(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("key count must be positive, got %d", n)
	}
	keys := make([]string, 0, n)
	scanner := bufio.NewScanner(r)
	for len(keys) < n && scanner.Scan() {
		key := scanner.Text()
		if l := len(key); l > 0 && key[l-1] == '\r' {
			key = key[:l-1]
		}
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(keys) < n {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrCorpusTooShort, n, len(keys))
	}
	return keys, nil
}

// LoadKeyCorpus reads the first n keys of the file at path.
func LoadKeyCorpus(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read keys from %s: %w", path, err)
	}
	defer f.Close()
	keys, err := ReadKeyCorpus(f, n)
	if err != nil {
		return nil, fmt.Errorf("could not read keys from %s: %w", path, err)
	}
	return keys, nil
}
