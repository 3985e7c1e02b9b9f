package txbench

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	g "github.com/hhkbp2/txbench/generator"
	"github.com/jehiah/go-strftime"
)

// nopWriteCloser keeps exporters from closing the standard streams.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// ExpandPath expands the strftime conversions in path with t.
func ExpandPath(path string, t time.Time) string {
	return strftime.Format(path, t)
}

// openOutput opens the file named by the strftime pattern path, or
// returns def if path is empty.
func openOutput(path string, def io.Writer, t time.Time) (io.WriteCloser, error) {
	if len(path) == 0 {
		return nopWriteCloser{def}, nil
	}
	f, err := os.Create(ExpandPath(path, t))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// checkOutputPaths rejects runs where two output files expand to the same
// path, since each one is truncated when opened.
func checkOutputPaths(p Properties, t time.Time) error {
	seen := make(map[string]string)
	for _, name := range []string{PropertyLogFile, PropertyExportFile, PropertyMeasurementFile} {
		path := p.Get(name)
		if len(path) == 0 {
			continue
		}
		expanded := filepath.Clean(ExpandPath(path, t))
		if other, ok := seen[expanded]; ok {
			return g.NewErrorf("%s and %s both write to %s", other, name, expanded)
		}
		seen[expanded] = name
	}
	return nil
}

// NewSamplerFromProperties builds the key sampler for a corpus of items keys.
func NewSamplerFromProperties(p Properties, items int64, src g.RandomSource) (g.KeySampler, error) {
	alpha, err := p.GetFloat(PropertyZipfAlpha, PropertyZipfAlphaDefault)
	if err != nil {
		return nil, err
	}
	var sampler g.KeySampler
	switch dist := p.Get(PropertyRequestDistribution); dist {
	case "":
		return g.NewKeySampler(items, alpha, src)
	case "uniform":
		sampler, err = g.NewUniformIntegerGenerator(items, src)
	case "zipfian":
		if alpha < 0 {
			alpha = 1
		}
		sampler, err = g.NewZipfianGenerator(items, alpha, src)
	case "hotspot":
		hotSet, err := p.GetFloat(HotspotDataFraction, HotspotDataFractionDefault)
		if err != nil {
			return nil, err
		}
		hotOpn, err := p.GetFloat(HotspotOpnFraction, HotspotOpnFractionDefault)
		if err != nil {
			return nil, err
		}
		return newHotspotSampler(items, hotSet, hotOpn, src)
	default:
		return nil, g.NewErrorf("unknown %s: %s", PropertyRequestDistribution, dist)
	}
	if err != nil {
		return nil, err
	}
	return sampler, nil
}

func newHotspotSampler(items int64, hotSet, hotOpn float64, src g.RandomSource) (g.KeySampler, error) {
	sampler, err := g.NewHotspotIntegerGenerator(items, hotSet, hotOpn, src)
	if err != nil {
		return nil, err
	}
	return sampler, nil
}

// NewDriverConfig reads the loop parameters from p. Writes carry a random
// alphanumeric value of valuesize bytes when it is positive.
func NewDriverConfig(p Properties, src g.RandomSource) (DriverConfig, error) {
	var cfg DriverConfig
	duration, err := p.GetFloat(PropertyDuration, PropertyDurationDefault)
	if err != nil {
		return cfg, err
	}
	if duration <= 0 {
		return cfg, g.NewErrorf("%s must be positive, got %v", PropertyDuration, duration)
	}
	txnLen, err := p.GetInt(PropertyTxnLen, PropertyTxnLenDefault)
	if err != nil {
		return cfg, err
	}
	writePercent, err := p.GetInt(PropertyWritePercent, PropertyWritePercentDefault)
	if err != nil {
		return cfg, err
	}
	valueSize, err := p.GetInt(PropertyValueSize, PropertyValueSizeDefault)
	if err != nil {
		return cfg, err
	}
	cfg = DriverConfig{
		Duration:     time.Duration(duration * float64(time.Second)),
		TxnLen:       int(txnLen),
		WritePercent: int(writePercent),
	}
	if valueSize > 0 {
		cfg.Payload = func(string) string {
			return RandomString(src, valueSize)
		}
	}
	return cfg, cfg.Validate()
}

// Runner executes one benchmark run and writes its reports.
type Runner struct {
	args   *Arguments
	clock  Clock
	stdout io.Writer
	stderr io.Writer
}

func NewRunner(args *Arguments) *Runner {
	return &Runner{
		args:   args,
		clock:  SystemClock,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (self *Runner) Main() {
	if err := self.Run(); err != nil {
		ExitOnError("%s", err)
	}
}

func (self *Runner) Run() error {
	props := self.args.Properties
	level, err := ParseLogLevel(props.GetDefault(PropertyLogLevel, PropertyLogLevelDefault))
	if err != nil {
		return err
	}
	SetLogLevel(level)

	outputTime := time.Now()
	if err := checkOutputPaths(props, outputTime); err != nil {
		return err
	}
	logOut, err := openOutput(props.Get(PropertyLogFile), self.stderr, outputTime)
	if err != nil {
		return err
	}
	defer logOut.Close()
	SetLogOutput(logOut)
	defer SetLogOutput(os.Stdout)
	if level >= LevelDebug {
		OutputProperties(props)
	}

	seed, err := props.GetInt(PropertySeed, PropertySeedDefault)
	if err != nil {
		return err
	}
	src := g.NewRandom(seed)
	cfg, err := NewDriverConfig(props, src)
	if err != nil {
		return err
	}
	keyCount, err := props.GetInt(PropertyKeyCount, PropertyKeyCountDefault)
	if err != nil {
		return err
	}
	keyFile := props.Get(PropertyKeyFile)
	if len(keyFile) == 0 {
		return g.NewErrorf("property %s is required", PropertyKeyFile)
	}
	keys, err := LoadKeyCorpus(keyFile, int(keyCount))
	if err != nil {
		return err
	}
	sampler, err := NewSamplerFromProperties(props, int64(len(keys)), src)
	if err != nil {
		return err
	}
	interval, err := props.GetFloat(PropertyStatusInterval, PropertyStatusIntervalDefault)
	if err != nil {
		return err
	}
	measurements, err := NewMeasurements(props)
	if err != nil {
		return err
	}

	db, err := NewClient(props.GetDefault(PropertyDB, PropertyDBDefault), props)
	if err != nil {
		return err
	}
	if err = db.Init(); err != nil {
		return fmt.Errorf("fail to init db: %w", err)
	}
	defer func() {
		if err := db.Cleanup(); err != nil {
			Errorf("fail to cleanup db: %s", err)
		}
	}()

	client := NewMeasureClient(db, cfg.TxnLen, self.clock, measurements)
	driver, err := NewDriver(cfg, keys, sampler, client, self.clock, src)
	if err != nil {
		return err
	}

	startTime := time.Now()
	Infof("running %s for %s, txnlen=%d, writepercent=%d, %d keys",
		self.args.Database, cfg.Duration, cfg.TxnLen, cfg.WritePercent, len(keys))
	var status *StatusReporter
	if interval > 0 {
		status = NewStatusReporter(self.stderr, time.Duration(interval*float64(time.Second)), measurements, self.clock)
		status.Start()
	}
	count, runErr := driver.Run()
	if status != nil {
		status.Stop()
	}
	if runErr != nil {
		Errorf("run stopped after %d transactions: %s", count, runErr)
	} else {
		Infof("%d transactions in %s", count, time.Since(startTime))
	}

	if err := self.writeReport(cfg, client, outputTime); err != nil {
		return err
	}
	if err := self.exportMeasurements(props, measurements, outputTime); err != nil {
		return err
	}
	return runErr
}

func (self *Runner) writeReport(cfg DriverConfig, client *MeasureClient, t time.Time) error {
	w, err := openOutput(self.args.Properties.Get(PropertyExportFile), self.stderr, t)
	if err != nil {
		return err
	}
	defer w.Close()
	if err = WriteParams(w, cfg); err != nil {
		return err
	}
	if err = WriteSummary(w, Summarize(client)); err != nil {
		return err
	}
	return WriteDetail(w, client.Log())
}

func (self *Runner) exportMeasurements(props Properties, m Measurements, t time.Time) error {
	w, err := openOutput(props.Get(PropertyMeasurementFile), self.stdout, t)
	if err != nil {
		return err
	}
	exporter, err := NewMeasurementExporter(props.GetDefault(PropertyExporter, PropertyExporterDefault), w)
	if err != nil {
		w.Close()
		return err
	}
	err = m.ExportMeasurements(exporter)
	if err2 := exporter.Close(); err == nil {
		err = err2
	}
	return err
}

// Analyzer prints the summary of a detail log.
type Analyzer struct {
	args *Arguments
	out  io.Writer
}

func NewAnalyzer(args *Arguments) *Analyzer {
	return &Analyzer{
		args: args,
		out:  os.Stdout,
	}
}

func (self *Analyzer) Main() {
	if err := self.Run(); err != nil {
		ExitOnError("%s", err)
	}
}

func (self *Analyzer) Run() error {
	f, err := os.Open(self.args.DetailLog)
	if err != nil {
		return err
	}
	defer f.Close()
	a, err := AnalyzeDetail(f, self.args.Warmup)
	if err != nil {
		return fmt.Errorf("%s: %w", self.args.DetailLog, err)
	}
	return a.Write(self.out)
}

// Shell runs transactions typed at a prompt against a database.
type Shell struct {
	args  *Arguments
	clock Clock
	in    io.Reader
	out   io.Writer
}

func NewShell(args *Arguments) *Shell {
	return &Shell{
		args:  args,
		clock: SystemClock,
		in:    os.Stdin,
		out:   os.Stdout,
	}
}

var (
	regexCmd = regexp.MustCompile(`\s+`)
)

func (self *Shell) Main() {
	db, err := NewClient(self.args.Database, self.args.Properties)
	if err != nil {
		ExitOnError("fail to create specified db, error: %s", err)
	}
	if err = db.Init(); err != nil {
		ExitOnError("fail to init db, error: %s", err)
	}
	defer db.Cleanup()
	self.Loop(db)
}

func (self *Shell) println(format string, args ...interface{}) {
	fmt.Fprintf(self.out, format, args...)
	fmt.Fprintln(self.out)
}

// Loop reads commands until quit or the end of input.
func (self *Shell) Loop(db TxnClient) {
	self.println("TXBENCH Command Line Client")
	self.println(`Type "help" for command line help`)
	scanner := bufio.NewScanner(self.in)
	for {
		fmt.Fprint(self.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		if line == "quit" {
			return
		}
		start := self.clock.Now()
		if self.execute(db, regexCmd.Split(line, -1)) {
			self.println("%d us", DurationToMicrosecond(self.clock.Now().Sub(start)))
		}
	}
}

// execute runs one command and reports whether it reached the database.
func (self *Shell) execute(db TxnClient, parts []string) bool {
	length := len(parts)
	switch parts[0] {
	case "help":
		self.help()
		return false
	case "begin":
		if err := db.Begin(); err != nil {
			self.println("Error: %s", err)
		} else {
			self.println("Transaction started")
		}
	case "get":
		if length != 2 {
			self.println(`Error: syntax is "get key"`)
			return false
		}
		value, status := db.Get(parts[1])
		self.println("Return code: %s", status)
		if status == StatusOK {
			self.println("%s=%s", parts[1], value)
		}
	case "put":
		if length != 3 {
			self.println(`Error: syntax is "put key value"`)
			return false
		}
		self.println("Result: %s", db.Put(parts[1], parts[2]))
	case "commit":
		if db.Commit() {
			self.println("Committed")
		} else {
			self.println("Aborted")
		}
	case "abort":
		db.Abort()
		self.println("Aborted")
	default:
		self.println(`Error: unknown command "%s"`, parts[0])
		return false
	}
	return true
}

func (self *Shell) help() {
	helpFormat := `Commands
  begin - Start a transaction
  get key - Read a key in the open transaction
  put key value - Write a key in the open transaction
  commit - Try to commit the open transaction
  abort - Discard the open transaction
  quit - Quit`
	self.println(helpFormat)
}
