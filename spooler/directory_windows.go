//go:build windows
// +build windows

package spooler

import (
	"context"
	"errors"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// IsSupported returns whether the spooler can be queried on this platform
func IsSupported() bool {
	return winspool.Load() == nil
}

var (
	winspool         = windows.NewLazySystemDLL("winspool.drv")
	procEnumPrinters = winspool.NewProc("EnumPrintersW")
	procOpenPrinter  = winspool.NewProc("OpenPrinterW")
	procGetPrinter   = winspool.NewProc("GetPrinterW")
	procClosePrinter = winspool.NewProc("ClosePrinter")
)

// Windows constants for printer enumeration
const (
	PRINTER_ENUM_LOCAL       = 0x00000002
	PRINTER_ENUM_CONNECTIONS = 0x00000004
	PRINTER_ENUM_NAME        = 0x00000008
)

const (
	errorInsufficientBuffer syscall.Errno = 122
	errorInvalidPrinterName syscall.Errno = 1801
)

// PRINTER_INFO_2 structure (Windows)
type printerInfo2 struct {
	ServerName         *uint16
	PrinterName        *uint16
	ShareName          *uint16
	PortName           *uint16
	DriverName         *uint16
	Comment            *uint16
	Location           *uint16
	DevMode            uintptr
	SepFile            *uint16
	PrintProcessor     *uint16
	Datatype           *uint16
	Parameters         *uint16
	SecurityDescriptor uintptr
	Attributes         uint32
	Priority           uint32
	DefaultPriority    uint32
	StartTime          uint32
	UntilTime          uint32
	Status             uint32
	Jobs               uint32
	AveragePPM         uint32
}

// PRINTER_INFO_5 structure (Windows)
type printerInfo5 struct {
	PrinterName              *uint16
	PortName                 *uint16
	Attributes               uint32
	DeviceNotSelectedTimeout uint32
	TransmissionRetryTimeout uint32
}

var errEnumFailed = errors.New("EnumPrintersW failed")

// enumBufferSize interprets the sizing call of EnumPrintersW. Success means
// there is nothing to enumerate; ERROR_INSUFFICIENT_BUFFER carries the size
// to allocate; any other failure (RPC server unavailable, access denied) is
// returned.
func enumBufferSize(ret uintptr, needed uint32, callErr error) (uint32, error) {
	if ret != 0 {
		return 0, nil
	}
	if errors.Is(callErr, errorInsufficientBuffer) {
		return needed, nil
	}
	if errno, ok := callErr.(syscall.Errno); callErr == nil || (ok && errno == 0) {
		return 0, errEnumFailed
	}
	return 0, callErr
}

// winDirectory queries the Windows print spooler
type winDirectory struct {
	logger Logger
}

// NewDirectory returns the Windows spooler directory
func NewDirectory(logger Logger) Directory {
	if logger == nil {
		logger = nullLogger{}
	}
	return &winDirectory{logger: logger}
}

// ListPrinters enumerates printers with PRINTER_INFO_2
func (d *winDirectory) ListPrinters(ctx context.Context, server string) ([]PrinterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flags := uint32(PRINTER_ENUM_LOCAL | PRINTER_ENUM_CONNECTIONS)
	var namePtr *uint16
	if server != "" {
		server = serverPath(server)
		flags = PRINTER_ENUM_NAME
		p, err := windows.UTF16PtrFromString(server)
		if err != nil {
			return nil, &DirectoryError{Op: OpEnumerate, Server: server, Err: err}
		}
		namePtr = p
	}

	// Get required buffer size
	var needed, returned uint32
	ret, _, callErr := procEnumPrinters.Call(
		uintptr(flags),
		uintptr(unsafe.Pointer(namePtr)),
		2, // Level 2 for PRINTER_INFO_2
		0, // pPrinterEnum (NULL to get size)
		0, // cbBuf
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&returned)),
	)
	size, err := enumBufferSize(ret, needed, callErr)
	if err != nil {
		return nil, &DirectoryError{Op: OpEnumerate, Server: server, Err: err}
	}
	if size == 0 {
		return nil, nil
	}

	buf := make([]byte, size)
	ret, _, callErr = procEnumPrinters.Call(
		uintptr(flags),
		uintptr(unsafe.Pointer(namePtr)),
		2,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(size),
		uintptr(unsafe.Pointer(&needed)),
		uintptr(unsafe.Pointer(&returned)),
	)
	if ret == 0 {
		return nil, &DirectoryError{Op: OpEnumerate, Server: server, Err: callErr}
	}

	records := make([]PrinterRecord, 0, returned)
	structSize := unsafe.Sizeof(printerInfo2{})
	for i := uint32(0); i < returned; i++ {
		info := (*printerInfo2)(unsafe.Pointer(&buf[uintptr(i)*structSize]))

		name := windows.UTF16PtrToString(info.PrinterName)
		if name == "" {
			continue
		}
		records = append(records, PrinterRecord{
			Name:     name,
			PortName: windows.UTF16PtrToString(info.PortName),
			Server:   server,
		})
	}

	d.logger.Debug("Enumerated spooler printers", "server", server, "count", len(records))
	return records, nil
}

// GetProperties reads PRINTER_INFO_2 for one printer
func (d *winDirectory) GetProperties(ctx context.Context, name string) (*PrinterProperties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var props *PrinterProperties
	err := d.withPrinter(name, func(handle windows.Handle) error {
		buf, err := getPrinter(handle, 2)
		if err != nil {
			return err
		}
		info := (*printerInfo2)(unsafe.Pointer(&buf[0]))
		props = &PrinterProperties{
			Name:        name,
			DriverName:  windows.UTF16PtrToString(info.DriverName),
			StatusCode:  StatusCodeFromFlags(info.Status),
			StatusFlags: info.Status,
			PortName:    windows.UTF16PtrToString(info.PortName),
		}
		return nil
	})
	if err != nil {
		return nil, wrapPropertiesError(name, err)
	}
	return props, nil
}

// GetLimitedProperties reads PRINTER_INFO_5 for one printer
func (d *winDirectory) GetLimitedProperties(ctx context.Context, name string) (*PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var port *PortInfo
	err := d.withPrinter(name, func(handle windows.Handle) error {
		buf, err := getPrinter(handle, 5)
		if err != nil {
			return err
		}
		info := (*printerInfo5)(unsafe.Pointer(&buf[0]))
		port = &PortInfo{
			Name:     name,
			PortName: windows.UTF16PtrToString(info.PortName),
		}
		return nil
	})
	if err != nil {
		return nil, wrapPropertiesError(name, err)
	}
	return port, nil
}

// withPrinter opens a printer handle, runs fn and always closes the handle
func (d *winDirectory) withPrinter(name string, fn func(windows.Handle) error) error {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return &DirectoryError{Op: OpOpen, Printer: name, Err: err}
	}

	var handle windows.Handle
	ret, _, callErr := procOpenPrinter.Call(
		uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(&handle)),
		0,
	)
	if ret == 0 {
		if errors.Is(callErr, errorInvalidPrinterName) {
			callErr = ErrPrinterNotFound
		}
		return &DirectoryError{Op: OpOpen, Printer: name, Err: callErr}
	}
	defer func() {
		if ret, _, callErr := procClosePrinter.Call(uintptr(handle)); ret == 0 {
			d.logger.Warn("ClosePrinter failed", "printer", name, "error", callErr)
		}
	}()

	return fn(handle)
}

// getPrinter calls GetPrinterW twice: once for the size, once for the data
func getPrinter(handle windows.Handle, level uint32) ([]byte, error) {
	var needed uint32
	ret, _, callErr := procGetPrinter.Call(
		uintptr(handle),
		uintptr(level),
		0,
		0,
		uintptr(unsafe.Pointer(&needed)),
	)
	if ret == 0 && !errors.Is(callErr, errorInsufficientBuffer) {
		return nil, callErr
	}
	if needed == 0 {
		return nil, errors.New("GetPrinter returned an empty buffer")
	}

	buf := make([]byte, needed)
	ret, _, callErr = procGetPrinter.Call(
		uintptr(handle),
		uintptr(level),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(needed),
		uintptr(unsafe.Pointer(&needed)),
	)
	if ret == 0 {
		return nil, callErr
	}
	return buf, nil
}
