//go:build linux || darwin
// +build linux darwin

package spooler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
)

// fakeCUPS answers lpstat/lpoptions invocations from canned output keyed by
// the joined command line
type fakeCUPS struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeCUPS) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("%s: exit status 1: lpstat: Invalid destination name in list %q", name, args[len(args)-1])
}

func newFakeDirectory(f *fakeCUPS) *cupsDirectory {
	return &cupsDirectory{logger: nullLogger{}, run: f.run}
}

func TestCUPSDirectory_ListPrinters(t *testing.T) {
	t.Parallel()

	f := &fakeCUPS{outputs: map[string]string{
		"lpstat -v": "device for Office: socket://10.0.0.5:9100\n" +
			"device for Label: usb://Zebra/ZD420?serial=X1\n",
		"lpstat -h printsrv -v": "device for Shared: ipp://10.0.0.9/ipp/print\n",
	}}
	d := newFakeDirectory(f)

	local, err := d.ListPrinters(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPrinters(local) error: %v", err)
	}
	if len(local) != 2 {
		t.Fatalf("expected 2 local printers, got %d", len(local))
	}
	if local[0].Name != "Office" || local[0].PortName != "10.0.0.5" || local[0].Server != "" {
		t.Errorf("unexpected first record: %+v", local[0])
	}
	if local[1].PortName != "usb://Zebra/ZD420?serial=X1" {
		t.Errorf("usb port should stay raw, got %q", local[1].PortName)
	}

	remote, err := d.ListPrinters(context.Background(), `\\printsrv`)
	if err != nil {
		t.Fatalf("ListPrinters(printsrv) error: %v", err)
	}
	if len(remote) != 1 || remote[0].Name != "Shared@printsrv" || remote[0].Server != "printsrv" {
		t.Errorf("unexpected remote records: %+v", remote)
	}
}

func TestCUPSDirectory_ListPrintersError(t *testing.T) {
	t.Parallel()

	f := &fakeCUPS{errs: map[string]error{
		"lpstat -h down -v": errors.New("lpstat: Unable to connect to server"),
	}}
	d := newFakeDirectory(f)

	_, err := d.ListPrinters(context.Background(), "down")
	var dirErr *DirectoryError
	if !errors.As(err, &dirErr) {
		t.Fatalf("expected DirectoryError, got %v", err)
	}
	if dirErr.Op != OpEnumerate || dirErr.Server != "down" {
		t.Errorf("unexpected error fields: %+v", dirErr)
	}
}

// shellRunner runs script through execRunner in place of the CUPS client
func shellRunner(script string) commandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return execRunner(ctx, "sh", "-c", script)
	}
}

func TestCUPSDirectory_ListPrintersExitStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:    "unreachable server",
			script:  "echo 'lpstat: Unable to connect to server' >&2; exit 1",
			wantErr: "Unable to connect to server",
		},
		{
			name:    "access denied",
			script:  "echo 'lpstat: Forbidden' >&2; exit 1",
			wantErr: "Forbidden",
		},
		{
			name:    "other exit code",
			script:  "echo 'lpstat: No destinations added.' >&2; exit 2",
			wantErr: "exit status 2",
		},
		{
			name:   "no destinations",
			script: "echo 'lpstat: No destinations added.' >&2; exit 1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := &cupsDirectory{logger: nullLogger{}, run: shellRunner(tt.script)}
			records, err := d.ListPrinters(context.Background(), "down")

			if tt.wantErr == "" {
				if err != nil || len(records) != 0 {
					t.Fatalf("ListPrinters() = (%v, %v), want empty list", records, err)
				}
				return
			}

			var dirErr *DirectoryError
			if !errors.As(err, &dirErr) {
				t.Fatalf("ListPrinters() = (%v, %v), want DirectoryError", records, err)
			}
			if dirErr.Op != OpEnumerate || dirErr.Server != "down" {
				t.Errorf("unexpected error fields: %+v", dirErr)
			}
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				t.Errorf("exit status should stay in the chain: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecRunner_Locale(t *testing.T) {
	t.Parallel()

	out, err := execRunner(context.Background(), "sh", "-c", `printf %s "$LC_ALL"`)
	if err != nil {
		t.Fatalf("execRunner error: %v", err)
	}
	if string(out) != "C" {
		t.Errorf("LC_ALL = %q, want C", out)
	}
}

func TestCUPSDirectory_GetProperties(t *testing.T) {
	t.Parallel()

	f := &fakeCUPS{outputs: map[string]string{
		"lpstat -v Office":          "device for Office: socket://10.0.0.5:9100\n",
		"lpstat -l -p Office":       "printer Office is idle.  enabled since Mon\n\tAlerts: toner-low-report\n\tDescription: Office Laser\n",
		"lpoptions -p Office":       "copies=1 printer-make-and-model='HP LaserJet Pro M404'",
		"lpstat -h srv -v Label":    "device for Label: usb://Zebra/ZD420\n",
		"lpstat -h srv -l -p Label": "printer Label is idle.\n\tDescription: Zebra Label\n",
	}}
	d := newFakeDirectory(f)

	props, err := d.GetProperties(context.Background(), "Office")
	if err != nil {
		t.Fatalf("GetProperties error: %v", err)
	}
	if props.DriverName != "HP LaserJet Pro M404" {
		t.Errorf("DriverName = %q", props.DriverName)
	}
	if props.StatusCode != StatusTonerLow || StatusLabel(props.StatusCode) != "Toner Low" {
		t.Errorf("StatusCode = %d", props.StatusCode)
	}
	if props.StatusFlags != 1<<StatusTonerLow {
		t.Errorf("StatusFlags = %#x", props.StatusFlags)
	}
	if props.PortName != "10.0.0.5" {
		t.Errorf("PortName = %q", props.PortName)
	}

	// lpoptions fails for the remote queue: driver falls back to Description
	remote, err := d.GetProperties(context.Background(), "Label@srv")
	if err != nil {
		t.Fatalf("GetProperties(remote) error: %v", err)
	}
	if remote.DriverName != "Zebra Label" || remote.StatusCode != StatusReady {
		t.Errorf("unexpected remote properties: %+v", remote)
	}
}

func TestCUPSDirectory_GetPropertiesUnknown(t *testing.T) {
	t.Parallel()

	d := newFakeDirectory(&fakeCUPS{})

	props, err := d.GetProperties(context.Background(), "Missing")
	if props != nil {
		t.Errorf("expected no properties, got %+v", props)
	}
	var dirErr *DirectoryError
	if !errors.As(err, &dirErr) || dirErr.Op != OpProperties {
		t.Fatalf("expected properties DirectoryError, got %v", err)
	}
	if !errors.Is(err, ErrPrinterNotFound) {
		t.Errorf("expected ErrPrinterNotFound in chain, got %v", err)
	}
}

func TestCUPSDirectory_GetLimitedProperties(t *testing.T) {
	t.Parallel()

	f := &fakeCUPS{outputs: map[string]string{
		"lpstat -v Office": "device for Office: socket://10.0.0.5:9100\n",
	}}
	d := newFakeDirectory(f)

	port, err := d.GetLimitedProperties(context.Background(), "Office")
	if err != nil {
		t.Fatalf("GetLimitedProperties error: %v", err)
	}
	if port.PortName != "10.0.0.5" {
		t.Errorf("PortName = %q", port.PortName)
	}
	if len(f.calls) != 1 {
		t.Errorf("limited query should run one command, ran %v", f.calls)
	}
}
