package txbench

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hhkbp2/txbench/generator"
	"gopkg.in/yaml.v2"
)

type Properties map[string]string

func NewProperties() Properties {
	return make(Properties)
}

func (self Properties) Get(key string) string {
	v, _ := self[key]
	return v
}

func (self Properties) GetDefault(key string, defaultValue string) string {
	if v, ok := self[key]; ok {
		return v
	}
	return defaultValue
}

func (self Properties) Add(key, value string) {
	self[key] = value
}

func (self Properties) Merge(other map[string]string) {
	for k, v := range other {
		self[k] = v
	}
}

func (self Properties) GetInt(key, defaultValue string) (int64, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseInt(propStr, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, propStr, err)
	}
	return v, nil
}

func (self Properties) GetFloat(key, defaultValue string) (float64, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseFloat(propStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, propStr, err)
	}
	return v, nil
}

func (self Properties) GetBool(key, defaultValue string) (bool, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseBool(propStr)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", key, propStr, err)
	}
	return v, nil
}

// LoadProperties reads a property file. Files ending in .yaml or .yml are
// parsed as a flat YAML map, anything else as `name=value` lines where
// blank lines and lines starting with '#' are skipped.
func LoadProperties(path string) (Properties, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLProperties(path)
	default:
		return loadTextProperties(path)
	}
}

func loadYAMLProperties(path string) (Properties, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fail to parse property file %s: %w", path, err)
	}
	props := NewProperties()
	for k, v := range raw {
		props.Add(k, fmt.Sprintf("%v", v))
	}
	return props, nil
}

func loadTextProperties(path string) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	props := NewProperties()
	scanner := bufio.NewScanner(f)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, generator.NewErrorf("invalid property at %s:%d: %s", path, lineNumber, line)
		}
		props.Add(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return props, nil
}

func Output(format string, args ...interface{}) {
	fmt.Printf(format, args...)
	fmt.Println("")
}

func OutputProperties(p Properties) {
	Output("***************** properties *****************")
	if p != nil {
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			Output("\"%s\"=\"%s\"", k, p[k])
		}
	}
	Output("**********************************************")
}

func MillisecondToNanosecond(millis int64) int64 {
	return millis * 1000 * 1000
}

// DurationToMicrosecond returns d in whole microseconds.
func DurationToMicrosecond(d time.Duration) int64 {
	return int64(d / time.Microsecond)
}

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns length alphanumerics drawn from src.
func RandomString(src generator.RandomSource, length int64) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumerics[src.Int63n(int64(len(alphanumerics)))]
	}
	return string(b)
}
