//go:build linux || darwin
// +build linux darwin

package spooler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// IsSupported returns whether the spooler can be queried on this platform
func IsSupported() bool {
	// Check if CUPS is available by looking for lpstat
	_, err := exec.LookPath("lpstat")
	return err == nil
}

// commandRunner runs a CUPS client command and returns its stdout
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// commandError is a failed CUPS client run with whatever it wrote to stderr
type commandError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *commandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *commandError) Unwrap() error {
	return e.Err
}

// execRunner runs the command in the C locale so its output parses
// regardless of the host language
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, &commandError{Name: name, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return out, nil
}

// noDestinations reports whether lpstat failed only because no queues exist
func noDestinations(err error) bool {
	var cmdErr *commandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	var exitErr *exec.ExitError
	if !errors.As(cmdErr.Err, &exitErr) || exitErr.ExitCode() != 1 {
		return false
	}
	return strings.Contains(strings.ToLower(cmdErr.Stderr), "no destinations added")
}

// cupsDirectory queries CUPS through the lpstat and lpoptions clients.
// Printers enumerated from a remote server are named "queue@server", the
// same destination notation CUPS itself uses.
type cupsDirectory struct {
	logger Logger
	run    commandRunner
}

// NewDirectory returns the CUPS spooler directory
func NewDirectory(logger Logger) Directory {
	if logger == nil {
		logger = nullLogger{}
	}
	return &cupsDirectory{logger: logger, run: execRunner}
}

// ListPrinters enumerates queues with lpstat -v
func (d *cupsDirectory) ListPrinters(ctx context.Context, server string) ([]PrinterRecord, error) {
	server = serverHost(server)
	output, err := d.run(ctx, "lpstat", withServer(server, "-v")...)
	if err != nil {
		// No printers is not an error; an unreachable or refusing server is
		if noDestinations(err) && len(bytes.TrimSpace(output)) == 0 {
			return nil, nil
		}
		return nil, &DirectoryError{Op: OpEnumerate, Server: server, Err: err}
	}

	var records []PrinterRecord
	for _, m := range scanMatches(output, deviceRegex) {
		name := m[1]
		if server != "" {
			name = name + "@" + server
		}
		records = append(records, PrinterRecord{
			Name:     name,
			PortName: portFromDeviceURI(m[2]),
			Server:   server,
		})
	}

	d.logger.Debug("Enumerated CUPS printers", "server", server, "count", len(records))
	return records, nil
}

// GetProperties reads state, driver and device URI for one queue
func (d *cupsDirectory) GetProperties(ctx context.Context, name string) (*PrinterProperties, error) {
	queue, server := splitDestination(name)

	uri, err := d.deviceURI(ctx, queue, server)
	if err != nil {
		return nil, wrapPropertiesError(name, err)
	}

	output, err := d.run(ctx, "lpstat", withServer(server, "-l", "-p", queue)...)
	if err != nil {
		return nil, wrapPropertiesError(name, notFound(queue, err))
	}
	code := parseCUPSStatus(output)

	driver := ""
	if opts, err := d.run(ctx, "lpoptions", withServer(server, "-p", queue)...); err == nil {
		driver = parseLPOptions(string(opts))["printer-make-and-model"]
	} else {
		d.logger.Debug("lpoptions failed", "printer", name, "error", err)
	}
	if driver == "" {
		driver = parseDescription(output)
	}

	var flags uint32
	if code > 0 {
		flags = 1 << uint(code)
	}

	return &PrinterProperties{
		Name:        name,
		DriverName:  driver,
		StatusCode:  code,
		StatusFlags: flags,
		PortName:    portFromDeviceURI(uri),
	}, nil
}

// GetLimitedProperties reads only the device URI for one queue
func (d *cupsDirectory) GetLimitedProperties(ctx context.Context, name string) (*PortInfo, error) {
	queue, server := splitDestination(name)
	uri, err := d.deviceURI(ctx, queue, server)
	if err != nil {
		return nil, wrapPropertiesError(name, err)
	}
	return &PortInfo{Name: name, PortName: portFromDeviceURI(uri)}, nil
}

// deviceURI returns the device URI reported by lpstat -v for a queue
func (d *cupsDirectory) deviceURI(ctx context.Context, queue, server string) (string, error) {
	output, err := d.run(ctx, "lpstat", withServer(server, "-v", queue)...)
	if err != nil {
		return "", notFound(queue, err)
	}
	for _, m := range scanMatches(output, deviceRegex) {
		if m[1] == queue {
			return m[2], nil
		}
	}
	return "", &DirectoryError{Op: OpOpen, Printer: queue, Server: server, Err: ErrPrinterNotFound}
}

// notFound maps lpstat's invalid destination complaint onto ErrPrinterNotFound
func notFound(queue string, err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "invalid destination") {
		return &DirectoryError{Op: OpOpen, Printer: queue, Err: ErrPrinterNotFound}
	}
	return err
}
