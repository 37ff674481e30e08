package spooler

import (
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// StatusLabel Tests
// =============================================================================

func TestStatusLabel_KnownCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code     int
		expected string
	}{
		{0, "Ready"},
		{1, "Error"},
		{2, "Pending Deletion"},
		{3, "Paper Jam"},
		{4, "Paper Out"},
		{5, "Manual Feed"},
		{6, "Paper Problem"},
		{7, "Offline"},
		{8, "IO Active"},
		{9, "Busy"},
		{10, "Printing"},
		{11, "Output Bin Full"},
		{12, "Not Available"},
		{13, "Waiting"},
		{14, "Processing"},
		{15, "Initializing"},
		{16, "Warming Up"},
		{17, "Toner Low"},
		{18, "No Toner"},
		{19, "Page Punt"},
		{20, "User Intervention Required"},
		{21, "Out of Memory"},
		{22, "Door Open"},
		{23, "Server_Unknown"},
		{24, "Power Save"},
	}

	if len(tests) != len(statusLabels) {
		t.Fatalf("status table has %d entries, test covers %d", len(statusLabels), len(tests))
	}

	for _, tt := range tests {
		tt := tt
		if got := StatusLabel(tt.code); got != tt.expected {
			t.Errorf("StatusLabel(%d) = %q, want %q", tt.code, got, tt.expected)
		}
	}
}

func TestStatusLabel_UnknownCodes(t *testing.T) {
	t.Parallel()

	for _, code := range []int{-1000, -1, 25, 26, 99, 1 << 17, 1 << 30} {
		if got := StatusLabel(code); got != StatusUnknown {
			t.Errorf("StatusLabel(%d) = %q, want %q", code, got, StatusUnknown)
		}
	}
}

func TestStatusCodeFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flags    uint32
		expected int
	}{
		{"no flags", 0, StatusReady},
		{"error", 0x00000002, StatusError},
		{"paper jam", 0x00000008, StatusPaperJam},
		{"offline", 0x00000080, StatusOffline},
		{"printing", 0x00000400, StatusPrinting},
		{"toner low", 0x00020000, StatusTonerLow},
		{"power save", 0x01000000, StatusPowerSave},
		{"lowest flag wins", 0x00020000 | 0x00000080, StatusOffline},
		{"paused is ignored next to other flags", 0x00000001 | 0x00000400, StatusPrinting},
		{"paused only", 0x00000001, StatusUnknownCode},
		{"undefined high flag", 0x80000000, 31},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StatusCodeFromFlags(tt.flags); got != tt.expected {
				t.Errorf("StatusCodeFromFlags(%#x) = %d, want %d", tt.flags, got, tt.expected)
			}
		})
	}

	if got := StatusLabel(StatusCodeFromFlags(0x80000000)); got != StatusUnknown {
		t.Errorf("undefined flag label = %q, want %q", got, StatusUnknown)
	}
}

// =============================================================================
// DirectoryError Tests
// =============================================================================

func TestDirectoryError_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *DirectoryError
		contains []string
	}{
		{
			name:     "properties fetch",
			err:      &DirectoryError{Op: OpProperties, Printer: "HP", Err: ErrPrinterNotFound},
			contains: []string{"printer properties fetch failed", `"HP"`, "printer not found"},
		},
		{
			name:     "enumerate on server",
			err:      &DirectoryError{Op: OpEnumerate, Server: `\\printsrv`, Err: errors.New("access denied")},
			contains: []string{"enumerate printers failed", `on \\printsrv`, "access denied"},
		},
		{
			name:     "no cause",
			err:      &DirectoryError{Op: OpOpen, Printer: "X"},
			contains: []string{"open printer failed"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestDirectoryError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := &DirectoryError{Op: OpOpen, Printer: "HP", Err: ErrPrinterNotFound}
	err := wrapPropertiesError("HP", inner)

	if !errors.Is(err, ErrPrinterNotFound) {
		t.Errorf("errors.Is(err, ErrPrinterNotFound) = false for %v", err)
	}

	var dirErr *DirectoryError
	if !errors.As(err, &dirErr) {
		t.Fatalf("errors.As failed for %v", err)
	}
	if dirErr.Op != OpProperties {
		t.Errorf("outer Op = %q, want %q", dirErr.Op, OpProperties)
	}

	// Already a properties error: not wrapped twice
	if again := wrapPropertiesError("HP", err); again != err {
		t.Errorf("wrapPropertiesError re-wrapped a properties error: %v", again)
	}
}

// =============================================================================
// Name helpers
// =============================================================================

func TestServerPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, expected string
	}{
		{"", ""},
		{"printsrv", `\\printsrv`},
		{`\\printsrv`, `\\printsrv`},
		{`\printsrv`, `\\printsrv`},
		{"  printsrv  ", `\\printsrv`},
	}
	for _, tt := range tests {
		tt := tt
		if got := serverPath(tt.in); got != tt.expected {
			t.Errorf("serverPath(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestPortFromDeviceURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"socket with port", "socket://10.0.0.5:9100", "10.0.0.5"},
		{"ipp hostname", "ipp://printer.example.com/ipp/print", "printer.example.com"},
		{"ipps with port", "ipps://print.example.com:631/printers/color", "print.example.com"},
		{"lpd queue", "lpd://printsrv/queue", "printsrv"},
		{"ipv6", "socket://[fe80::1]:9100", "fe80::1"},
		{"usb stays raw", "usb://HP/LaserJet%20Pro?serial=ABC", "usb://HP/LaserJet%20Pro?serial=ABC"},
		{"dnssd stays raw", "dnssd://HP._ipp._tcp.local./", "dnssd://HP._ipp._tcp.local./"},
		{"file stays raw", "file:///dev/null", "file:///dev/null"},
		{"plain name", "printsrv", "printsrv"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := portFromDeviceURI(tt.uri); got != tt.expected {
				t.Errorf("portFromDeviceURI(%q) = %q, want %q", tt.uri, got, tt.expected)
			}
		})
	}
}
