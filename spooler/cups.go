package spooler

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// Parsers for CUPS client output. They have no build constraint so they can
// be tested on every platform.

var (
	deviceRegex  = regexp.MustCompile(`^device\s+for\s+(\S+):\s+(.*)$`)
	printerRegex = regexp.MustCompile(`^printer\s+(\S+)\s+(.*)$`)
)

// cupsReasonCodes maps printer-state-reasons keywords to status codes, most
// severe first. Keywords are matched after stripping the -report, -warning
// and -error suffixes.
var cupsReasonCodes = []struct {
	reason string
	code   int
}{
	{"media-jam", StatusPaperJam},
	{"door-open", StatusDoorOpen},
	{"cover-open", StatusDoorOpen},
	{"media-empty", StatusPaperOut},
	{"media-needed", StatusPaperOut},
	{"toner-empty", StatusNoToner},
	{"marker-supply-empty", StatusNoToner},
	{"output-area-full", StatusOutputBinFull},
	{"offline", StatusOffline},
	{"shutdown", StatusOffline},
	{"toner-low", StatusTonerLow},
	{"marker-supply-low", StatusTonerLow},
	{"input-tray-missing", StatusPaperProblem},
	{"spool-area-full", StatusOutOfMemory},
}

// parseCUPSStatus derives a status code from lpstat -l -p output
func parseCUPSStatus(output []byte) int {
	code := StatusUnknownCode
	reasons := map[string]bool{}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := printerRegex.FindStringSubmatch(line); m != nil {
			state := m[2]
			switch {
			case strings.Contains(state, "is idle"):
				code = StatusReady
			case strings.Contains(state, "now printing"):
				code = StatusPrinting
			case strings.Contains(state, "disabled"):
				code = StatusOffline
			}
			continue
		}

		if strings.HasPrefix(line, "Alerts:") {
			for _, r := range strings.Fields(strings.TrimPrefix(line, "Alerts:")) {
				reasons[trimReasonSuffix(r)] = true
			}
		}
	}

	for _, rc := range cupsReasonCodes {
		if reasons[rc.reason] {
			return rc.code
		}
	}
	return code
}

func trimReasonSuffix(reason string) string {
	for _, suffix := range []string{"-report", "-warning", "-error"} {
		if strings.HasSuffix(reason, suffix) {
			return strings.TrimSuffix(reason, suffix)
		}
	}
	return reason
}

// parseDescription returns the Description field of lpstat -l -p output
func parseDescription(output []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "Description:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		}
	}
	return ""
}

// parseLPOptions splits lpoptions -p output into key/value pairs. Values may
// be single- or double-quoted and contain spaces.
func parseLPOptions(output string) map[string]string {
	opts := make(map[string]string)
	s := strings.TrimSpace(output)
	for len(s) > 0 {
		eq := strings.IndexAny(s, "= ")
		if eq < 0 {
			opts[s] = ""
			break
		}
		key := s[:eq]
		if s[eq] == ' ' {
			opts[key] = ""
			s = strings.TrimLeft(s[eq:], " ")
			continue
		}

		s = s[eq+1:]
		var value string
		if len(s) > 0 && (s[0] == '\'' || s[0] == '"') {
			quote := s[0]
			end := strings.IndexByte(s[1:], quote)
			if end < 0 {
				value, s = s[1:], ""
			} else {
				value, s = s[1:end+1], s[end+2:]
			}
		} else {
			end := strings.IndexByte(s, ' ')
			if end < 0 {
				value, s = s, ""
			} else {
				value, s = s[:end], s[end:]
			}
		}
		opts[key] = value
		s = strings.TrimLeft(s, " ")
	}
	return opts
}

// withServer prefixes args with -h server when a server is set
func withServer(server string, args ...string) []string {
	if server == "" {
		return args
	}
	return append([]string{"-h", server}, args...)
}

// splitDestination splits "queue@server" into its parts
func splitDestination(name string) (queue, server string) {
	if i := strings.LastIndex(name, "@"); i > 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func scanMatches(output []byte, re *regexp.Regexp) [][]string {
	var matches [][]string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if m := re.FindStringSubmatch(strings.TrimSpace(scanner.Text())); m != nil {
			matches = append(matches, m)
		}
	}
	return matches
}
