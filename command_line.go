package txbench

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

type MakeClientFunc func() TxnClient

var (
	ErrHelp = errors.New("help requested")

	Commands = map[string]bool{
		"run":     true,
		"shell":   true,
		"analyze": true,
	}
	Databases = map[string]MakeClientFunc{
		"basic": func() TxnClient {
			return NewBasicDB()
		},
	}
	OptionPrefixes = []string{"--", "-"}
	OptionList     = []*Option{
		&Option{
			Name:        "P",
			HasArgument: true,
			Doc:         "specify workload file",
		},
		&Option{
			Name:        "p",
			HasArgument: true,
			Doc:         "specify a property value",
		},
		&Option{
			Name:        "s",
			HasArgument: false,
			Doc:         "print status to stderr every 10 seconds",
		},
		&Option{
			Name:        "d",
			HasArgument: true,
			Property:    PropertyDuration,
			Doc:         "run for the given seconds",
		},
		&Option{
			Name:        "l",
			HasArgument: true,
			Property:    PropertyTxnLen,
			Doc:         "number of operations per transaction",
		},
		&Option{
			Name:        "w",
			HasArgument: true,
			Property:    PropertyWritePercent,
			Doc:         "percentage of writes, 0-100",
		},
		&Option{
			Name:        "k",
			HasArgument: true,
			Property:    PropertyKeyCount,
			Doc:         "number of keys to use",
		},
		&Option{
			Name:        "f",
			HasArgument: true,
			Property:    PropertyKeyFile,
			Doc:         "key file, one key per line",
		},
		&Option{
			Name:        "z",
			HasArgument: true,
			Property:    PropertyZipfAlpha,
			Doc:         "zipf coefficient, negative for uniform keys",
		},
		&Option{
			Name:        "h",
			HasArgument: false,
			Doc:         "show this help message and exit",
		},
		&Option{
			Name:        "help",
			HasArgument: false,
			Doc:         "show this help message and exit",
		},
	}
	Options = make(map[string]*Option)

	ProgramName = ""
)

// StatusIntervalForFlag is the status.interval the -s flag sets.
const StatusIntervalForFlag = "10"

type Option struct {
	Name        string
	HasArgument bool
	// Property is set from the argument when not empty.
	Property string
	Doc      string
}

type Arguments struct {
	Command  string
	Database string
	// DetailLog and Warmup are the operands of the analyze command.
	DetailLog string
	Warmup    time.Duration
	Properties
}

func Usage(w io.Writer) {
	usageFormat := `usage: %s command database [options]
       %s analyze detail-log [warmup-seconds]

Commands:
  run                Execute the benchmark
  shell              Interactive mode
  analyze            Summarize a detail log written by run

Databases:
%s
Options:
  -P filename      : specify workload file (key=value lines, or YAML)
  -p name=value    : specify a property value
  -s               : print status to stderr every 10 seconds
  -d seconds       : run duration (property "duration")
  -l length        : operations per transaction (property "txnlen")
  -w percent       : percentage of writes (property "writepercent")
  -k count         : number of keys (property "keycount")
  -f filename      : key file (property "keyfile")
  -z alpha         : zipf coefficient, negative for uniform (property "zipf.alpha")

optional arguments:
  -h, --help         show this help message and exit
`
	names := make([]string, 0, len(Databases))
	for name := range Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	var databases strings.Builder
	for _, name := range names {
		fmt.Fprintf(&databases, "  %s\n", name)
	}
	fmt.Fprintf(w, usageFormat, ProgramName, ProgramName, databases.String())
}

func init() {
	ProgramName = filepath.Base(os.Args[0])

	// init options
	for i := 0; i < len(OptionList); i++ {
		o := OptionList[i]
		Options[o.Name] = o
	}
}

func ExitOnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help"
}

// ParseArgs parses the command line without the program name.
func ParseArgs(args []string) (*Arguments, error) {
	if len(args) == 0 {
		return nil, errors.New("not enough arguments")
	}
	if isHelp(args[0]) {
		return nil, ErrHelp
	}
	command := args[0]
	if _, ok := Commands[command]; !ok {
		return nil, fmt.Errorf("unsupported command: %s", command)
	}
	if len(args) < 2 {
		return nil, errors.New("not enough arguments")
	}
	if isHelp(args[1]) {
		return nil, ErrHelp
	}
	if command == "analyze" {
		return parseAnalyzeArgs(args[1:])
	}

	database := args[1]
	if _, ok := Databases[database]; !ok {
		return nil, fmt.Errorf("unsupported database: %s", database)
	}
	props := NewProperties()
	props.Add(PropertyDB, database)
	for i := 2; i < len(args); i++ {
		a := args[i]
		for _, p := range OptionPrefixes {
			if strings.HasPrefix(a, p) {
				a = strings.TrimPrefix(a, p)
				break
			}
		}
		option, ok := Options[a]
		if !ok {
			return nil, fmt.Errorf("unknown option: %s", args[i])
		}
		if !option.HasArgument {
			switch option.Name {
			case "s":
				props.Add(PropertyStatusInterval, StatusIntervalForFlag)
			case "h", "help":
				return nil, ErrHelp
			}
			continue
		}
		i++
		if !(i < len(args)) {
			return nil, fmt.Errorf("missing argument for option: %s", option.Name)
		}
		arg := args[i]
		switch option.Name {
		case "p":
			// it's a property, should be in `k=v` form
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) != 2 || len(parts[0]) == 0 {
				return nil, fmt.Errorf("invalid property: %s", arg)
			}
			props.Add(parts[0], parts[1])
		case "P":
			propsFromFile, err := LoadProperties(arg)
			if err != nil {
				return nil, err
			}
			props.Merge(propsFromFile)
		default:
			props.Add(option.Property, arg)
		}
	}
	return &Arguments{
		Command:    command,
		Database:   database,
		Properties: props,
	}, nil
}

func parseAnalyzeArgs(args []string) (*Arguments, error) {
	if len(args) > 2 {
		return nil, fmt.Errorf("unexpected argument: %s", args[2])
	}
	a := &Arguments{
		Command:    "analyze",
		DetailLog:  args[0],
		Properties: NewProperties(),
	}
	if len(args) == 2 {
		seconds, err := strconv.ParseFloat(args[1], 64)
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid warmup seconds: %s", args[1])
		}
		a.Warmup = time.Duration(seconds * float64(time.Second))
	}
	return a, nil
}

type Client interface {
	Main()
}

func Main() {
	args, err := ParseArgs(os.Args[1:])
	if err == ErrHelp {
		Usage(os.Stdout)
		os.Exit(0)
	}
	if err != nil {
		Usage(os.Stderr)
		ExitOnError("%s", err)
	}
	var client Client
	switch args.Command {
	case "shell":
		client = NewShell(args)
	case "run":
		client = NewRunner(args)
	case "analyze":
		client = NewAnalyzer(args)
	default:
		ExitOnError("invalid command: %s", args.Command)
	}
	client.Main()
}
