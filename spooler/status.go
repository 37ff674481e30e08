package spooler

import "math/bits"

// StatusUnknown is the label for codes outside the status table
const StatusUnknown = "Unknown"

// StatusUnknownCode is a code outside the status table
const StatusUnknownCode = -1

// Status codes. A code is the bit position of the matching Windows
// PRINTER_STATUS_* flag, with 0 meaning no flag is set.
const (
	StatusReady                    = 0
	StatusError                    = 1
	StatusPendingDeletion          = 2
	StatusPaperJam                 = 3
	StatusPaperOut                 = 4
	StatusManualFeed               = 5
	StatusPaperProblem             = 6
	StatusOffline                  = 7
	StatusIOActive                 = 8
	StatusBusy                     = 9
	StatusPrinting                 = 10
	StatusOutputBinFull            = 11
	StatusNotAvailable             = 12
	StatusWaiting                  = 13
	StatusProcessing               = 14
	StatusInitializing             = 15
	StatusWarmingUp                = 16
	StatusTonerLow                 = 17
	StatusNoToner                  = 18
	StatusPagePunt                 = 19
	StatusUserInterventionRequired = 20
	StatusOutOfMemory              = 21
	StatusDoorOpen                 = 22
	StatusServerUnknown            = 23
	StatusPowerSave                = 24
)

var statusLabels = [...]string{
	StatusReady:                    "Ready",
	StatusError:                    "Error",
	StatusPendingDeletion:          "Pending Deletion",
	StatusPaperJam:                 "Paper Jam",
	StatusPaperOut:                 "Paper Out",
	StatusManualFeed:               "Manual Feed",
	StatusPaperProblem:             "Paper Problem",
	StatusOffline:                  "Offline",
	StatusIOActive:                 "IO Active",
	StatusBusy:                     "Busy",
	StatusPrinting:                 "Printing",
	StatusOutputBinFull:            "Output Bin Full",
	StatusNotAvailable:             "Not Available",
	StatusWaiting:                  "Waiting",
	StatusProcessing:               "Processing",
	StatusInitializing:             "Initializing",
	StatusWarmingUp:                "Warming Up",
	StatusTonerLow:                 "Toner Low",
	StatusNoToner:                  "No Toner",
	StatusPagePunt:                 "Page Punt",
	StatusUserInterventionRequired: "User Intervention Required",
	StatusOutOfMemory:              "Out of Memory",
	StatusDoorOpen:                 "Door Open",
	StatusServerUnknown:            "Server_Unknown",
	StatusPowerSave:                "Power Save",
}

// StatusLabel returns the display label for a status code, or "Unknown"
func StatusLabel(code int) string {
	if code < 0 || code >= len(statusLabels) {
		return StatusUnknown
	}
	return statusLabels[code]
}

// statusFlagPaused is PRINTER_STATUS_PAUSED, which has no label of its own
const statusFlagPaused = 0x00000001

// StatusCodeFromFlags maps a PRINTER_STATUS_* bitmask onto a status code.
// The lowest set flag wins, flag bit k giving code k. This deliberately
// differs from indexing the table with the raw Status value: raw 0x80
// (OFFLINE) maps to Offline here, not Unknown, and raw 8 (PAPER_JAM) maps
// to Paper Jam, not IO Active. A printer that is only paused has no code and
// yields StatusUnknownCode.
func StatusCodeFromFlags(flags uint32) int {
	if flags == 0 {
		return StatusReady
	}
	flags &^= statusFlagPaused
	if flags == 0 {
		return StatusUnknownCode
	}
	return bits.TrailingZeros32(flags)
}
