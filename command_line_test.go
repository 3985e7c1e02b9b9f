package txbench

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseArgsRun(t *testing.T) {
	args, err := ParseArgs([]string{"run", "basic", "-d", "5", "-l", "4", "--w", "20",
		"-k", "50", "-f", "keys.txt", "-z", "0.9", "-p", "mysql.options=a=b", "-s"})
	require.Nil(t, err)
	require.Equal(t, "run", args.Command)
	require.Equal(t, "basic", args.Database)
	p := args.Properties
	require.Equal(t, "basic", p.Get(PropertyDB))
	require.Equal(t, "5", p.Get(PropertyDuration))
	require.Equal(t, "4", p.Get(PropertyTxnLen))
	require.Equal(t, "20", p.Get(PropertyWritePercent))
	require.Equal(t, "50", p.Get(PropertyKeyCount))
	require.Equal(t, "keys.txt", p.Get(PropertyKeyFile))
	require.Equal(t, "0.9", p.Get(PropertyZipfAlpha))
	require.Equal(t, "a=b", p.Get("mysql.options"))
	require.Equal(t, StatusIntervalForFlag, p.Get(PropertyStatusInterval))
}

func TestParseArgsPropertyFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "txbench")
	require.Nil(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "workload.yaml")
	require.Nil(t, ioutil.WriteFile(path, []byte("txnlen: 7\nwritepercent: 10\n"), 0644))

	args, err := ParseArgs([]string{"shell", "basic", "-P", path, "-p", "txnlen=3"})
	require.Nil(t, err)
	require.Equal(t, "shell", args.Command)
	require.Equal(t, "3", args.Get(PropertyTxnLen))
	require.Equal(t, "10", args.Get(PropertyWritePercent))
}

func TestParseArgsAnalyze(t *testing.T) {
	args, err := ParseArgs([]string{"analyze", "run.log", "2.5"})
	require.Nil(t, err)
	require.Equal(t, "analyze", args.Command)
	require.Equal(t, "run.log", args.DetailLog)
	require.Equal(t, 2500*time.Millisecond, args.Warmup)

	args, err = ParseArgs([]string{"analyze", "run.log"})
	require.Nil(t, err)
	require.Equal(t, time.Duration(0), args.Warmup)

	_, err = ParseArgs([]string{"analyze", "run.log", "-1"})
	require.NotNil(t, err)
	_, err = ParseArgs([]string{"analyze", "run.log", "1", "2"})
	require.NotNil(t, err)
}

func TestParseArgsErrors(t *testing.T) {
	cases := [][]string{
		{},
		{"load", "basic"},
		{"run"},
		{"run", "nosuchdb"},
		{"run", "basic", "-x"},
		{"run", "basic", "-d"},
		{"run", "basic", "-p", "novalue"},
		{"run", "basic", "-P", "/nonexistent/workload"},
	}
	for _, c := range cases {
		_, err := ParseArgs(c)
		require.NotNil(t, err, "%v", c)
		require.NotEqual(t, ErrHelp, err)
	}
}

func TestParseArgsHelp(t *testing.T) {
	for _, c := range [][]string{{"-h"}, {"--help"}, {"run", "-h"}, {"run", "basic", "--help"}} {
		_, err := ParseArgs(c)
		require.Equal(t, ErrHelp, err, "%v", c)
	}
}

func TestUsageListsDatabases(t *testing.T) {
	var buf bytes.Buffer
	Usage(&buf)
	require.Contains(t, buf.String(), "  basic\n")
	require.Contains(t, buf.String(), "analyze")
}
