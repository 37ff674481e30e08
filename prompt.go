package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/aplejeune/TSTC/lookup"
)

// printerLookup is the part of lookup.Service the prompt drives
type printerLookup interface {
	DescribePrinter(ctx context.Context, name string) (*lookup.Report, error)
	FindPrinterByAddress(ctx context.Context, target, server string) (string, bool, error)
}

// commandContext scopes one command. Interrupt cancels the running lookup
// and returns to the prompt.
var commandContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// prompt is the interactive name/ip/exit loop
type prompt struct {
	in            *bufio.Scanner
	out           io.Writer
	svc           printerLookup
	defaultServer string
}

// runPrompt reads commands from in until "exit" or end of input
func runPrompt(ctx context.Context, in io.Reader, out io.Writer, svc printerLookup, defaultServer string) error {
	p := &prompt{
		in:            bufio.NewScanner(in),
		out:           out,
		svc:           svc,
		defaultServer: strings.TrimSpace(defaultServer),
	}

	for {
		fmt.Fprintln(p.out, "Enter 'name' to search by printer name, 'ip' to search by IP address, or 'exit' to close:")
		choice, ok := p.ask("> ")
		if !ok {
			return p.in.Err()
		}

		var more bool
		switch strings.ToLower(choice) {
		case "exit":
			return nil
		case "name":
			more = p.byName(ctx)
		case "ip":
			more = p.byAddress(ctx)
		default:
			fmt.Fprintln(p.out, "Invalid choice. Please enter 'name' or 'ip'.")
			more = true
		}
		if !more {
			return p.in.Err()
		}
		fmt.Fprint(p.out, "\n\n")
	}
}

// ask prints label and reads one trimmed line. False means input ended.
func (p *prompt) ask(label string) (string, bool) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *prompt) byName(ctx context.Context) bool {
	fmt.Fprintln(p.out, "Enter the name of the printer to fetch information:")
	name, ok := p.ask("> ")
	if !ok {
		return false
	}

	cmdCtx, stop := commandContext(ctx)
	defer stop()
	p.describe(cmdCtx, name)
	return true
}

func (p *prompt) byAddress(ctx context.Context) bool {
	fmt.Fprintln(p.out, "Enter the IP address of the printer to fetch information:")
	address, ok := p.ask("> ")
	if !ok {
		return false
	}

	if p.defaultServer == "" {
		fmt.Fprintln(p.out, "Enter the server name (leave blank for local)")
	} else {
		fmt.Fprintf(p.out, "Enter the server name (leave blank for %s)\n", p.defaultServer)
	}
	server, ok := p.ask(">")
	if !ok {
		return false
	}
	if server == "" {
		server = p.defaultServer
	}

	cmdCtx, stop := commandContext(ctx)
	defer stop()

	name, found, err := p.svc.FindPrinterByAddress(cmdCtx, address, server)
	switch {
	case err != nil && cmdCtx.Err() != nil:
		fmt.Fprintln(p.out, "Lookup cancelled")
	case err != nil:
		fmt.Fprintf(p.out, "Error enumerating printers: %v\n", err)
	case found:
		p.describe(cmdCtx, name)
	default:
		fmt.Fprintf(p.out, "No printer found with IP address: %s\n", address)
	}
	return true
}

func (p *prompt) describe(ctx context.Context, name string) {
	report, err := p.svc.DescribePrinter(ctx, name)
	if err != nil {
		// A cancelled CUPS client fails with "signal: killed", not ctx.Err()
		if ctx.Err() != nil {
			fmt.Fprintln(p.out, "Lookup cancelled")
			return
		}
		fmt.Fprintf(p.out, "Error fetching printer properties: %v\n", err)
		return
	}
	report.WriteTo(p.out)
}
