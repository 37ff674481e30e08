package lookup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/aplejeune/TSTC/spooler"
)

// fakePrinter is one printer known to fakeDirectory
type fakePrinter struct {
	port       string
	driver     string
	statusCode int
	err        error         // returned by property queries
	panics     bool          // GetLimitedProperties panics
	block      chan struct{} // GetLimitedProperties waits on it when set
}

// fakeDirectory is an in-memory spooler.Directory that tracks concurrency
type fakeDirectory struct {
	order    []string
	printers map[string]*fakePrinter
	listErr  error

	mu       sync.Mutex
	servers  []string
	inFlight int32
	maxSeen  int32
	probed   int32
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{printers: make(map[string]*fakePrinter)}
}

func (d *fakeDirectory) add(name string, p *fakePrinter) *fakeDirectory {
	d.order = append(d.order, name)
	d.printers[name] = p
	return d
}

func (d *fakeDirectory) ListPrinters(ctx context.Context, server string) ([]spooler.PrinterRecord, error) {
	d.mu.Lock()
	d.servers = append(d.servers, server)
	d.mu.Unlock()

	if d.listErr != nil {
		return nil, &spooler.DirectoryError{Op: spooler.OpEnumerate, Server: server, Err: d.listErr}
	}
	records := make([]spooler.PrinterRecord, 0, len(d.order))
	for _, name := range d.order {
		records = append(records, spooler.PrinterRecord{Name: name, PortName: d.printers[name].port, Server: server})
	}
	return records, nil
}

func (d *fakeDirectory) GetProperties(ctx context.Context, name string) (*spooler.PrinterProperties, error) {
	p, ok := d.printers[name]
	if !ok {
		return nil, &spooler.DirectoryError{Op: spooler.OpProperties, Printer: name, Err: spooler.ErrPrinterNotFound}
	}
	if p.err != nil {
		return nil, &spooler.DirectoryError{Op: spooler.OpProperties, Printer: name, Err: p.err}
	}
	return &spooler.PrinterProperties{
		Name:       name,
		DriverName: p.driver,
		StatusCode: p.statusCode,
		PortName:   p.port,
	}, nil
}

func (d *fakeDirectory) GetLimitedProperties(ctx context.Context, name string) (*spooler.PortInfo, error) {
	n := atomic.AddInt32(&d.inFlight, 1)
	defer atomic.AddInt32(&d.inFlight, -1)
	atomic.AddInt32(&d.probed, 1)
	for {
		seen := atomic.LoadInt32(&d.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&d.maxSeen, seen, n) {
			break
		}
	}

	p, ok := d.printers[name]
	if !ok {
		return nil, &spooler.DirectoryError{Op: spooler.OpProperties, Printer: name, Err: spooler.ErrPrinterNotFound}
	}
	if p.block != nil {
		<-p.block
	}
	if p.panics {
		panic("spooler exploded")
	}
	if p.err != nil {
		return nil, &spooler.DirectoryError{Op: spooler.OpProperties, Printer: name, Err: p.err}
	}
	return &spooler.PortInfo{Name: name, PortName: p.port}, nil
}

// fakeResolver maps host names to addresses; literal IPs pass through and
// unknown names fail
type fakeResolver struct {
	hosts map[string][]string
	gate  map[string]chan struct{} // lookups of these hosts wait on the channel
}

func (r *fakeResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if g, ok := r.gate[host]; ok {
		<-g
	}
	if addrs, ok := r.hosts[host]; ok {
		return addrs, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}
	return nil, fmt.Errorf("lookup %s: no such host", host)
}

var errAccessDenied = errors.New("access is denied")

// fakeProber returns a fixed identity or error and records probed addresses
type fakeProber struct {
	id    *DeviceIdentity
	err   error
	mu    sync.Mutex
	calls []string
}

func (p *fakeProber) Probe(ctx context.Context, address string) (*DeviceIdentity, error) {
	p.mu.Lock()
	p.calls = append(p.calls, address)
	p.mu.Unlock()
	return p.id, p.err
}
