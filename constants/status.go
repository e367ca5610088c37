package constants

// ExtractionOutcome labels how a single extraction request ended.
type ExtractionOutcome string

// Stable values (used as metric labels).
const (
	OutcomeOK             ExtractionOutcome = "ok"              // primary provider result used
	OutcomeFallback       ExtractionOutcome = "fallback"        // fallback provider result used
	OutcomeFallbackFailed ExtractionOutcome = "fallback_failed" // fallback errored, primary result kept
	OutcomeFailed         ExtractionOutcome = "failed"          // no usable result
)
