package lookup

import (
	"context"
	"fmt"
	"io"
	"net"
	"runtime"

	"github.com/aplejeune/TSTC/spooler"
)

// Logger interface for lookup operations
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

// Config controls the lookup service
type Config struct {
	// Workers bounds the number of concurrent probes in an address scan.
	// Zero or less uses DefaultWorkers.
	Workers int

	// Identity, when set, enriches reports of printers with a literal IP
	// address. Failures leave Report.Device nil.
	Identity IdentityProber
}

// DefaultWorkers returns the scan pool size used when none is configured
func DefaultWorkers() int {
	n := runtime.NumCPU() + 4
	if n > 32 {
		n = 32
	}
	return n
}

// Service answers name→info and address→name questions against a spooler
// directory
type Service struct {
	dir      spooler.Directory
	resolver AddressResolver
	cfg      Config
	logger   Logger
}

// New creates a lookup service
func New(dir spooler.Directory, resolver AddressResolver, cfg Config, logger Logger) *Service {
	if logger == nil {
		logger = nullLogger{}
	}
	if resolver == nil {
		resolver = NewSystemResolver()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers()
	}
	return &Service{
		dir:      dir,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// Report describes one printer
type Report struct {
	Name       string          `json:"name"`
	DriverName string          `json:"driver_name"`
	Status     string          `json:"status"`
	Address    string          `json:"address"`
	Device     *DeviceIdentity `json:"device,omitempty"`
}

// WriteTo prints the report in the interactive layout
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Printer: %s\n    Driver: %s\n    Status: %s\n    IP Address: %s\n",
		r.Name, r.DriverName, r.Status, r.Address)
	if err != nil || r.Device == nil {
		return int64(n), err
	}
	m, err := fmt.Fprintf(w, "    Device: %s\n", r.Device)
	return int64(n + m), err
}

// DescribePrinter fetches a printer's properties and resolves its port.
// A directory failure is returned as is and no report is produced.
func (s *Service) DescribePrinter(ctx context.Context, name string) (*Report, error) {
	props, err := s.dir.GetProperties(ctx, name)
	if err != nil {
		s.logger.Warn("Printer properties fetch failed", "printer", name, "error", err)
		return nil, err
	}

	report := &Report{
		Name:       name,
		DriverName: props.DriverName,
		Status:     spooler.StatusLabel(props.StatusCode),
		Address:    ResolveAddress(ctx, s.resolver, props.PortName),
	}
	if !IsResolved(report.Address) {
		s.logger.Debug("Port address unresolved", "printer", name, "port", props.PortName)
	}

	if s.cfg.Identity != nil && net.ParseIP(report.Address) != nil {
		id, err := s.cfg.Identity.Probe(ctx, report.Address)
		if err != nil {
			s.logger.Debug("Device identity probe failed", "printer", name, "address", report.Address, "error", err)
		} else {
			report.Device = id
		}
	}

	s.logger.Debug("Described printer",
		"printer", name,
		"port", props.PortName,
		"status_code", props.StatusCode,
		"address", report.Address)
	return report, nil
}
