package session

import "errors"

// Error taxonomy for session operations. Callers should match with
// errors.Is; external failures wrap one of the two *Failed sentinels.
var (
	// ErrInvalidInput rejects whitespace-only submissions and questions,
	// and malformed feedback kinds, before any external call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCaptureUnavailable means no speech capture source is configured
	// for this session.
	ErrCaptureUnavailable = errors.New("speech capture unavailable")

	// ErrAnalysisInFlight rejects a submit (or capture start) while an
	// analysis is still running for this session.
	ErrAnalysisInFlight = errors.New("analysis already in progress")

	// ErrTurnInFlight rejects a follow-up question while the previous
	// turn's reply has not been appended yet.
	ErrTurnInFlight = errors.New("conversation turn already in progress")

	// ErrNoInterpretation rejects feedback and follow-up questions before
	// an interpretation exists.
	ErrNoInterpretation = errors.New("no interpretation available yet")

	// ErrAnalysisFailed wraps analysis-service failures. The session is
	// back in the capturing state with its input preserved.
	ErrAnalysisFailed = errors.New("dream analysis failed")

	// ErrConversationFailed wraps conversation-service failures. The
	// user's question stays in the transcript; no reply is fabricated.
	ErrConversationFailed = errors.New("conversation reply failed")

	// ErrSessionClosed means the session was discarded; late results are
	// dropped rather than applied.
	ErrSessionClosed = errors.New("session closed")
)
