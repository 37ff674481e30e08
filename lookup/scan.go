package lookup

import (
	"context"
	"sync"
	"time"

	"github.com/aplejeune/TSTC/spooler"
)

// FindPrinterByAddress enumerates the printers of server (local when empty)
// and resolves every printer's port on a bounded worker pool. The first
// printer whose port resolves to target wins, in completion order. Probes
// still running at that point finish on their own and their results are
// dropped. A printer that cannot be queried simply does not match.
//
// The boolean is false when no printer matched. Only an enumeration failure
// or a cancelled ctx produce an error.
func (s *Service) FindPrinterByAddress(ctx context.Context, target, server string) (string, bool, error) {
	start := time.Now()

	candidates, err := s.dir.ListPrinters(ctx, server)
	if err != nil {
		s.logger.Warn("Printer enumeration failed", "server", server, "error", err)
		return "", false, err
	}
	if len(candidates) == 0 {
		s.logger.Debug("No printers to scan", "server", server)
		return "", false, nil
	}

	workers := s.cfg.Workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan spooler.PrinterRecord, len(candidates))
	for _, c := range candidates {
		jobs <- c
	}
	close(jobs)

	// Buffered for every candidate so workers never block once the caller
	// has stopped listening.
	matches := make(chan string, len(candidates))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for c := range jobs {
				if name, ok := s.probe(ctx, c, target); ok {
					matches <- name
				}
			}
		}()
	}

	// close output when workers finish
	go func() {
		wg.Wait()
		close(matches)
	}()

	select {
	case name, ok := <-matches:
		if !ok {
			s.logger.Debug("Address scan found no match",
				"target", target,
				"server", server,
				"candidates", len(candidates),
				"elapsed", time.Since(start))
			return "", false, nil
		}
		s.logger.Debug("Address scan matched",
			"target", target,
			"printer", name,
			"candidates", len(candidates),
			"elapsed", time.Since(start))
		return name, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// probe resolves one candidate's port and compares it with target. Errors
// and panics are not reported: the candidate just does not match.
func (s *Service) probe(ctx context.Context, c spooler.PrinterRecord, target string) (name string, ok bool) {
	defer func() {
		if recover() != nil {
			name, ok = "", false
		}
	}()

	port, err := s.dir.GetLimitedProperties(ctx, c.Name)
	if err != nil {
		return "", false
	}
	address := ResolveAddress(ctx, s.resolver, port.PortName)
	if IsResolved(address) && sameAddress(address, target) {
		return c.Name, true
	}
	return "", false
}
