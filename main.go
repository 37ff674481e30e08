// Command printlookup looks up printers known to the local print spooler, or
// to a print server, by name or by IP address.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/aplejeune/TSTC/common/config"
	"github.com/aplejeune/TSTC/common/logger"
	commonutil "github.com/aplejeune/TSTC/common/util"
	"github.com/aplejeune/TSTC/lookup"
	"github.com/aplejeune/TSTC/spooler"
)

// Version information (set at build time via -ldflags)
var (
	Version   = "dev"     // Semantic version (e.g., "1.0.0")
	BuildTime = "unknown" // Build timestamp
	GitCommit = "unknown" // Git commit hash
)

// newDirectory is replaced in tests
var newDirectory = spooler.NewDirectory

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("printlookup", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Configuration file path (default: search for "+configFileName+")")
	generateConfig := flags.Bool("generate-config", false, "Generate default config file and exit")
	showVersion := flags.Bool("version", false, "Show version information and exit")
	verbose := flags.Bool("verbose", false, "Mirror log entries to stderr at debug level or finer")
	flags.BoolVar(verbose, "v", false, "Shorthand for --verbose")
	quiet := flags.Bool("quiet", false, "Suppress the banner and informational output")
	flags.BoolVar(quiet, "q", false, "Shorthand for --quiet")
	noColor := flags.Bool("no-color", false, "Disable colored output")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	console := commonutil.NewConsole(stdout, *quiet)
	errConsole := commonutil.NewConsole(stderr, *quiet)
	if *noColor {
		console.SetColor(false)
		errConsole.SetColor(false)
	}

	if *showVersion {
		fmt.Fprintf(stdout, "printlookup %s\n", Version)
		fmt.Fprintf(stdout, "Build Time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "Git Commit: %s\n", GitCommit)
		fmt.Fprintf(stdout, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(stdout, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return 0
	}

	path := config.ResolveConfigPath(envPrefix, *configPath)

	if *generateConfig {
		if path == "" {
			path = configFileName
		}
		if err := WriteDefaultAppConfig(path); err != nil {
			errConsole.ShowError(fmt.Sprintf("Failed to generate config: %v", err))
			return 1
		}
		console.ShowSuccess(fmt.Sprintf("Generated default configuration at %s", path))
		return 0
	}

	cfg, source, err := LoadAppConfig(path)
	if err != nil {
		errConsole.ShowError(fmt.Sprintf("Failed to load config: %v", err))
		return 1
	}

	appLogger := newLogger(cfg.Logging, *verbose, stderr)
	defer appLogger.Close()

	svc, err := newService(cfg, appLogger)
	if err != nil {
		errConsole.ShowError(fmt.Sprintf("Failed to configure lookups: %v", err))
		return 1
	}

	console.ShowBanner("Printer Lookup", Version, GitCommit, BuildTime)
	if source != "" {
		console.ShowInfo(fmt.Sprintf("Using configuration %s", source))
	}
	if !spooler.IsSupported() {
		console.ShowWarning("No print spooler is available on this host; lookups will fail")
	}
	appLogger.Info("printlookup started",
		"version", Version,
		"config", source,
		"log_level", logger.LevelToString(appLogger.GetLevel()),
		"workers", cfg.Lookup.Workers,
		"nameserver", cfg.Lookup.Nameserver,
		"mdns", cfg.Lookup.MDNS,
		"snmp", cfg.SNMP.Enabled)

	if err := runPrompt(context.Background(), stdin, stdout, svc, cfg.Lookup.Server); err != nil {
		appLogger.Error("Reading input failed", "error", err)
		errConsole.ShowError(fmt.Sprintf("Reading input failed: %v", err))
		if !*verbose {
			fmt.Fprintln(stderr, "Recent log entries:")
			appLogger.Copy(stderr)
		}
		return 1
	}
	appLogger.Info("printlookup exiting")
	return 0
}

// newLogger creates the file logger. logging.dir "-" keeps entries in memory
// only; verbose mirrors them to stderr and raises the level to at least DEBUG.
func newLogger(cfg config.LoggingConfig, verbose bool, stderr io.Writer) *logger.Logger {
	logDir := cfg.Dir
	switch logDir {
	case "-":
		logDir = ""
	case "":
		if dir, err := config.GetLogDirectory(); err == nil {
			logDir = dir
		} else {
			fmt.Fprintf(stderr, "Log file disabled: %v\n", err)
		}
	}

	appLogger := logger.New(logger.LevelFromString(cfg.Level), logDir, 1000)
	appLogger.SetRotationPolicy(logger.RotationPolicy{
		Enabled:    cfg.MaxSizeMB > 0,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxAgeDays: cfg.MaxAgeDays,
		MaxFiles:   cfg.MaxFiles,
	})
	if verbose {
		appLogger.SetConsole(stderr)
		if appLogger.GetLevel() < logger.DEBUG {
			appLogger.SetLevel(logger.DEBUG)
		}
	}
	return appLogger
}

// newService wires the spooler directory, resolver and optional SNMP prober
func newService(cfg *AppConfig, appLogger *logger.Logger) (*lookup.Service, error) {
	prober, err := cfg.NewIdentityProber()
	if err != nil {
		return nil, err
	}
	return lookup.New(
		newDirectory(appLogger),
		cfg.NewResolver(),
		lookup.Config{Workers: cfg.Lookup.Workers, Identity: prober},
		appLogger,
	), nil
}
