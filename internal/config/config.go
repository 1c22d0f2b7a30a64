// Package config builds the immutable per-command configuration. Values come
// from an optional JSON config file, overridden by command line flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/awiddersheim/thruk-downtimes/internal/logger"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// ErrUsage marks argument problems. Main prints nothing extra for it; the
// flag set has already shown usage.
var ErrUsage = errors.New("invalid arguments")

// Convert holds the downtime-convert settings.
type Convert struct {
	Dir        string         `koanf:"dir"`
	Output     string         `koanf:"output"`
	Single     string         `koanf:"single"`
	Simulation bool           `koanf:"simulation"`
	Log        *logger.Config `koanf:"log"`
}

// Email configures the optional pump run report. Empty To disables it.
type Email struct {
	To      string `koanf:"to"`
	From    string `koanf:"from"`
	Subject string `koanf:"subject"`
}

// Pump holds the downtime-pump settings.
type Pump struct {
	InputFile  string         `koanf:"downtime_file"`
	User       string         `koanf:"user"`
	Password   string         `koanf:"password"`
	URL        string         `koanf:"url"`
	Author     string         `koanf:"author"`
	Timeout    int            `koanf:"timeout"`
	Sleep      int            `koanf:"sleep"`
	Retries    int            `koanf:"retries"`
	Insecure   bool           `koanf:"insecure"`
	Simulation bool           `koanf:"simulation"`
	Email      Email          `koanf:"email"`
	Log        *logger.Config `koanf:"log"`
}

// LoadConvert parses the downtime-convert command line. Usage goes to
// stderr; pass another writer in tests.
func LoadConvert(args []string, stderr io.Writer) (*Convert, error) {
	cfg := &Convert{Log: &logger.Config{}}

	fs := flag.NewFlagSet("downtime-convert", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		dir        = stringFlag(fs, "dir", "d", "", "Source directory containing downtime (.tsk) files")
		output     = stringFlag(fs, "output", "o", "", "Destination path for the JSON output")
		single     = stringFlag(fs, "single", "s", "", "Process only this one file, relative to --dir")
		simulation = boolFlag(fs, "simulation", "S", "Compute the output but do not write it")
		verbose    = boolFlag(fs, "verbose", "v", "Log at debug level")
		configPath = stringFlag(fs, "config", "c", "", "Optional JSON config file with defaults")
	)

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(ErrUsage, err.Error())
	}

	if *configPath != "" {
		if err := loadFile(*configPath, cfg); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir", "d":
			cfg.Dir = *dir
		case "output", "o":
			cfg.Output = *output
		case "single", "s":
			cfg.Single = *single
		case "simulation", "S":
			cfg.Simulation = *simulation
		}
	})
	if *verbose {
		cfg.Log.Level = "debug"
	}

	if cfg.Dir == "" || cfg.Output == "" {
		fs.Usage()
		return nil, errors.Wrap(ErrUsage, "--dir and --output are required")
	}
	return cfg, nil
}

// LoadPump parses the downtime-pump command line. The password falls back to
// the THRUK_PASSWORD environment variable when not given.
func LoadPump(args []string, stderr io.Writer) (*Pump, error) {
	cfg := &Pump{
		InputFile: "downtimes.json",
		URL:       "https://127.0.0.1/thruk/cgi-bin/cmd.cgi",
		Author:    "Nagios",
		Timeout:   10,
		Sleep:     1,
		Retries:   10,
		Log:       &logger.Config{},
	}

	fs := flag.NewFlagSet("downtime-pump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		input      = stringFlag(fs, "downtime-file", "d", cfg.InputFile, "JSON downtime file to pump")
		user       = stringFlag(fs, "user", "u", "", "User to authenticate with")
		password   = stringFlag(fs, "password", "p", "", "Password to authenticate with (or THRUK_PASSWORD)")
		rawURL     = stringFlag(fs, "url", "U", cfg.URL, "URL of Thruk's cmd.cgi page")
		author     = stringFlag(fs, "author", "a", cfg.Author, "Author recorded on the downtimes")
		timeout    = intFlag(fs, "timeout", "t", cfg.Timeout, "Request timeout in seconds")
		sleep      = intFlag(fs, "sleep", "z", cfg.Sleep, "Seconds to sleep between retries")
		retries    = intFlag(fs, "retries", "r", cfg.Retries, "Retries per downtime submission")
		insecure   = boolFlag(fs, "insecure", "k", "Skip TLS certificate verification")
		simulation = boolFlag(fs, "simulation", "s", "Show what would be sent without sending it")
		verbose    = boolFlag(fs, "verbose", "v", "Log at debug level")
		configPath = stringFlag(fs, "config", "c", "", "Optional JSON config file with defaults")
	)

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(ErrUsage, err.Error())
	}

	if *configPath != "" {
		if err := loadFile(*configPath, cfg); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "downtime-file", "d":
			cfg.InputFile = *input
		case "user", "u":
			cfg.User = *user
		case "password", "p":
			cfg.Password = *password
		case "url", "U":
			cfg.URL = *rawURL
		case "author", "a":
			cfg.Author = *author
		case "timeout", "t":
			cfg.Timeout = *timeout
		case "sleep", "z":
			cfg.Sleep = *sleep
		case "retries", "r":
			cfg.Retries = *retries
		case "insecure", "k":
			cfg.Insecure = *insecure
		case "simulation", "s":
			cfg.Simulation = *simulation
		}
	})
	if *verbose {
		cfg.Log.Level = "debug"
	}

	if cfg.Password == "" {
		cfg.Password = os.Getenv("THRUK_PASSWORD")
	}
	if cfg.Password != "" && cfg.User == "" {
		fmt.Fprintln(stderr, "a password was specified without a user")
		fs.Usage()
		return nil, errors.Wrap(ErrUsage, "password specified without a user")
	}
	return cfg, nil
}

func loadFile(path string, out any) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return errors.WithStack(err)
	}
	if err := k.Unmarshal("", out); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// stringFlag registers a flag under its long and short name.
func stringFlag(fs *flag.FlagSet, long, short, value, usage string) *string {
	p := fs.String(long, value, usage)
	fs.StringVar(p, short, value, usage)
	return p
}

func intFlag(fs *flag.FlagSet, long, short string, value int, usage string) *int {
	p := fs.Int(long, value, usage)
	fs.IntVar(p, short, value, usage)
	return p
}

func boolFlag(fs *flag.FlagSet, long, short, usage string) *bool {
	p := fs.Bool(long, false, usage)
	fs.BoolVar(p, short, false, usage)
	return p
}
