// Package spooler provides read-only access to the host print spooler.
// On Windows, it queries the Windows Print Spooler API (winspool.drv).
// On Linux and macOS, it queries CUPS (Common Unix Printing System).
// Every query opens and releases its own printer handle, so a Directory is
// safe for concurrent use.
package spooler

import (
	"context"
	"errors"
	"fmt"
)

// PrinterRecord is a printer returned by directory enumeration
type PrinterRecord struct {
	Name     string `json:"name"`             // Spooler printer name (e.g., "HP LaserJet Pro M404" or "\\srv\HP")
	PortName string `json:"port_name"`        // Port (e.g., "USB001", "10.0.0.5", "printsrv01")
	Server   string `json:"server,omitempty"` // Server the printer was enumerated from, empty for local
}

// PrinterProperties is a snapshot of a printer's driver, status and port
type PrinterProperties struct {
	Name        string `json:"name"`
	DriverName  string `json:"driver_name"`
	StatusCode  int    `json:"status_code"`  // Index into the status table, see StatusLabel
	StatusFlags uint32 `json:"status_flags"` // Raw spooler status (PRINTER_STATUS_* on Windows)
	PortName    string `json:"port_name"`
}

// PortInfo is the limited property set read while scanning
type PortInfo struct {
	Name     string `json:"name"`
	PortName string `json:"port_name"`
}

// Directory is the spooler's printer directory
type Directory interface {
	// ListPrinters enumerates local and connected printers when server is
	// empty, or the printers shared by the named server otherwise.
	ListPrinters(ctx context.Context, server string) ([]PrinterRecord, error)

	// GetProperties fetches driver, status and port for one printer.
	GetProperties(ctx context.Context, name string) (*PrinterProperties, error)

	// GetLimitedProperties fetches only the port of one printer.
	GetLimitedProperties(ctx context.Context, name string) (*PortInfo, error)
}

var (
	// ErrUnsupported is returned on platforms without a spooler backend
	ErrUnsupported = errors.New("print spooler is not supported on this platform")

	// ErrPrinterNotFound is returned when the spooler does not know the printer
	ErrPrinterNotFound = errors.New("printer not found")
)

// Directory operations reported in DirectoryError.Op
const (
	OpEnumerate  = "enumerate printers"
	OpProperties = "printer properties fetch"
	OpOpen       = "open printer"
)

// DirectoryError reports a failed spooler query
type DirectoryError struct {
	Op      string
	Printer string
	Server  string
	Err     error
}

func (e *DirectoryError) Error() string {
	msg := e.Op + " failed"
	if e.Printer != "" {
		msg += fmt.Sprintf(" for %q", e.Printer)
	}
	if e.Server != "" {
		msg += fmt.Sprintf(" on %s", e.Server)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// wrapPropertiesError reports any failure inside a handle scope as a
// properties fetch failure, keeping the underlying cause
func wrapPropertiesError(name string, err error) error {
	var dirErr *DirectoryError
	if errors.As(err, &dirErr) && dirErr.Op == OpProperties {
		return err
	}
	return &DirectoryError{Op: OpProperties, Printer: name, Err: err}
}

// Logger interface for spooler operations
type Logger interface {
	Error(msg string, context ...interface{})
	Warn(msg string, context ...interface{})
	Info(msg string, context ...interface{})
	Debug(msg string, context ...interface{})
}

// nullLogger is a no-op logger
type nullLogger struct{}

func (nullLogger) Error(msg string, context ...interface{}) {}
func (nullLogger) Warn(msg string, context ...interface{})  {}
func (nullLogger) Info(msg string, context ...interface{})  {}
func (nullLogger) Debug(msg string, context ...interface{}) {}
