// Package oids centralizes the SNMP OIDs printlookup reads from printers.
// The constants mirror the MIB-II system group, the Host Resources MIB and
// the Printer MIB so callers can avoid scattering raw dotted strings.
package oids

const (
	// --- MIB-II system group (RFC 1213) ---

	// SysDescr reports a human-readable system description string.
	SysDescr = "1.3.6.1.2.1.1.1.0"
	// SysName is the administratively assigned device name.
	SysName = "1.3.6.1.2.1.1.5.0"
)

const (
	// --- Host Resources MIB (RFC 2790) ---

	// HrDeviceDescr points at HOST-RESOURCES-MIB::hrDeviceDescr.1, which
	// printers fill with their model.
	HrDeviceDescr = "1.3.6.1.2.1.25.3.2.1.3.1"
)

const (
	// --- Printer MIB (RFC 3805) ---

	// PrtGeneralSerialNumber (prtGeneralSerialNumber.1) is the canonical serial.
	PrtGeneralSerialNumber = "1.3.6.1.2.1.43.5.1.1.17.1"
)

// Identity lists the OIDs fetched in one GET to identify a printer
var Identity = []string{SysName, SysDescr, HrDeviceDescr, PrtGeneralSerialNumber}
