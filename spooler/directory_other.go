//go:build !windows && !linux && !darwin
// +build !windows,!linux,!darwin

package spooler

import "context"

// IsSupported returns whether the spooler can be queried on this platform
func IsSupported() bool {
	return false
}

// unsupportedDirectory fails every query
type unsupportedDirectory struct{}

// NewDirectory returns a directory that reports ErrUnsupported
func NewDirectory(logger Logger) Directory {
	return unsupportedDirectory{}
}

func (unsupportedDirectory) ListPrinters(ctx context.Context, server string) ([]PrinterRecord, error) {
	return nil, &DirectoryError{Op: OpEnumerate, Server: server, Err: ErrUnsupported}
}

func (unsupportedDirectory) GetProperties(ctx context.Context, name string) (*PrinterProperties, error) {
	return nil, &DirectoryError{Op: OpProperties, Printer: name, Err: ErrUnsupported}
}

func (unsupportedDirectory) GetLimitedProperties(ctx context.Context, name string) (*PortInfo, error) {
	return nil, &DirectoryError{Op: OpProperties, Printer: name, Err: ErrUnsupported}
}
