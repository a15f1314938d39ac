// Package constants defines global constants used throughout slicerlink.
package constants

import "slices"

// ExportState represents the coordinator's position in the export-and-handoff flow.
// Exactly one request is active per coordinator; the state belongs to that request.
type ExportState string

const (
	// ExportIdle indicates no request is active and a new one may start
	ExportIdle ExportState = "IDLE"
	// ExportExporting indicates the artifact is being produced (conversion or passthrough fetch)
	ExportExporting ExportState = "EXPORTING"
	// ExportStaging indicates the artifact is being uploaded for a shareable URL
	ExportStaging ExportState = "STAGING"
	// ExportLaunching indicates the OS-level handoff attempt is in flight
	ExportLaunching ExportState = "LAUNCHING"
	// ExportSucceeded indicates the target application accepted the handoff
	ExportSucceeded ExportState = "SUCCEEDED"
	// ExportFallenBack indicates the flow completed via a direct download instead
	ExportFallenBack ExportState = "FALLEN_BACK"
	// ExportErrored indicates a terminal failure awaiting user dismissal
	ExportErrored ExportState = "ERRORED"
)

// TerminalExportStates returns all states that represent a finished request.
// Each of them transitions back to IDLE before a new request can start.
func TerminalExportStates() []ExportState {
	return []ExportState{
		ExportSucceeded,
		ExportFallenBack,
		ExportErrored,
	}
}

// validTransitions defines the allowed state transitions for the export flow.
// Each key represents a source state, and the value is a slice of allowed destination states.
// Staging failures skip ERRORED and fall back directly; ERRORED from STAGING or
// LAUNCHING is reserved for the case where even the fallback download fails.
var validTransitions = map[ExportState][]ExportState{
	ExportIdle:      {ExportExporting},
	ExportExporting: {ExportStaging, ExportErrored},
	ExportStaging:   {ExportLaunching, ExportFallenBack, ExportErrored},
	ExportLaunching: {ExportSucceeded, ExportFallenBack, ExportErrored},
	// Terminal states return to IDLE only
	ExportSucceeded:  {ExportIdle},
	ExportFallenBack: {ExportIdle},
	ExportErrored:    {ExportIdle},
}

// CanTransition checks if a state transition from 'from' to 'to' is valid.
// Returns true if the transition is allowed, false otherwise.
// If the source state is not in the validTransitions map, returns false.
func CanTransition(from, to ExportState) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(allowed, to)
}

// ExportOutcome represents the resolved result of one export request.
// Monotonic: once a request reaches a non-pending value it is not revisited.
type ExportOutcome string

const (
	// OutcomePending indicates the request has not resolved yet
	OutcomePending ExportOutcome = "pending"
	// OutcomeLaunched indicates the observation window elapsed with no failure signal
	OutcomeLaunched ExportOutcome = "launched"
	// OutcomeHandoffFailed indicates a failure signal arrived inside the observation window
	OutcomeHandoffFailed ExportOutcome = "handoff-failed"
	// OutcomeStagingFailed indicates the upload failed and the blob was saved locally
	OutcomeStagingFailed ExportOutcome = "staging-failed"
	// OutcomeExportFailed indicates conversion or the passthrough fetch failed
	OutcomeExportFailed ExportOutcome = "export-failed"
)

// DeliveryMethod distinguishes how the artifact reached the user in a successful flow.
type DeliveryMethod string

const (
	// DeliveryURLScheme means the target application received the staged URL
	DeliveryURLScheme DeliveryMethod = "url-scheme"
	// DeliveryDownload means the artifact was saved locally as a fallback
	DeliveryDownload DeliveryMethod = "download"
)
