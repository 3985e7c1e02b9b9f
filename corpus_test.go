package txbench

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadKeyCorpus(t *testing.T) {
	keys, err := ReadKeyCorpus(strings.NewReader("a\r\nb\nc\nd\n"), 3)
	require.Nil(t, err)
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestReadKeyCorpusTooShort(t *testing.T) {
	_, err := ReadKeyCorpus(strings.NewReader("a\nb\n"), 3)
	require.True(t, errors.Is(err, ErrCorpusTooShort))
	_, err = ReadKeyCorpus(strings.NewReader("a\n"), 0)
	require.NotNil(t, err)
}

func TestLoadKeyCorpus(t *testing.T) {
	dir, err := ioutil.TempDir("", "txbench")
	require.Nil(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "keys")
	require.Nil(t, ioutil.WriteFile(path, []byte("k1\nk2\n"), 0644))

	keys, err := LoadKeyCorpus(path, 2)
	require.Nil(t, err)
	require.Equal(t, []string{"k1", "k2"}, keys)

	_, err = LoadKeyCorpus(path, 5)
	require.True(t, errors.Is(err, ErrCorpusTooShort))
	require.Contains(t, err.Error(), path)

	_, err = LoadKeyCorpus(filepath.Join(dir, "missing"), 1)
	require.NotNil(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
