// Package session owns the lifecycle of one dream-interpretation session:
// capturing input (typed or dictated), submitting it for analysis, tracking
// simulated progress, recording feedback and running follow-up conversation
// turns anchored to the interpretation.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"oneiro/oneiro/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the session lifecycle position.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAnalyzing
	StateInterpreted
	StateConversing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateAnalyzing:
		return "analyzing"
	case StateInterpreted:
		return "interpreted"
	case StateConversing:
		return "conversing"
	}
	return "unknown"
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type FeedbackKind string

const (
	FeedbackPositive FeedbackKind = "positive"
	FeedbackNegative FeedbackKind = "negative"
)

// Symbol is one mapped dream symbol with its psychological meaning.
type Symbol struct {
	Symbol     string  `json:"symbol"`
	Meaning    string  `json:"meaning"`
	Confidence float64 `json:"confidence"`
}

// Interpretation is the structured result of analyzing one dream narrative.
// Symbols and Insights are produced atomically by one analysis call and are
// never partially populated.
type Interpretation struct {
	ID            string        `json:"id"`
	SourceText    string        `json:"source_text"`
	Symbols       []Symbol      `json:"symbols"`
	Insights      []string      `json:"insights"`
	EmotionalTone string        `json:"emotional_tone"`
	Summary       string        `json:"summary"`
	Feedback      *FeedbackKind `json:"feedback,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Message is one entry in the session's append-only transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CaptureEvent is one recognition result from the speech capture service.
// Only finalized segments are appended to the input buffer.
type CaptureEvent struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// Analyzer is the opaque analysis service: high latency, may fail.
type Analyzer interface {
	Analyze(ctx context.Context, text, locale string) (*Interpretation, error)
}

// Responder is the opaque conversation service for follow-up turns.
type Responder interface {
	Respond(ctx context.Context, interp *Interpretation, history []Message, question string) (string, error)
}

// Recorder persists interpretations and feedback. Calls are fire-and-forget
// from the session's perspective; failures are logged, never surfaced.
type Recorder interface {
	RecordInterpretation(ctx context.Context, userID int, interp *Interpretation) error
	RecordFeedback(ctx context.Context, interpretationID string, kind FeedbackKind) error
}

// CaptureSource is a lazy, restartable stream of recognition events.
// Start must not block; the returned channel closes on end of stream.
type CaptureSource interface {
	Start(ctx context.Context) (<-chan CaptureEvent, error)
}

// Config bounds the session's external calls and progress simulation.
type Config struct {
	AnalysisTimeout     time.Duration
	ConversationTimeout time.Duration
	ProgressInterval    time.Duration
	ProgressCeiling     int
	ProgressClearDelay  time.Duration
	Locale              string
}

func DefaultConfig() Config {
	return Config{
		AnalysisTimeout:     60 * time.Second,
		ConversationTimeout: 30 * time.Second,
		ProgressInterval:    150 * time.Millisecond,
		ProgressCeiling:     95,
		ProgressClearDelay:  600 * time.Millisecond,
		Locale:              "en",
	}
}

const interpretationReadyMessage = "Your dream has been interpreted. The symbols and insights are ready, so feel free to ask me anything about them."

func feedbackAck(kind FeedbackKind) string {
	if kind == FeedbackPositive {
		return "I'm glad the interpretation resonated with you. Dreams often reveal more over time, so keep exploring whenever you like."
	}
	return "Thank you for the honest feedback. Dream symbolism is deeply personal; tell me what felt off and we can look at it from another angle."
}

// Session is the explicit state object for one dream narrative and its
// conversational follow-up. All mutation goes through its methods; the
// zero progress/transcript/interpretation fields are never shared raw.
type Session struct {
	ID  string
	cfg Config

	analyzer  Analyzer
	responder Responder
	recorder  Recorder

	mu            sync.Mutex
	state         State
	prevState     State
	input         string
	interp        *Interpretation
	messages      []Message
	progress      progress
	turnInFlight  bool
	capturing     bool
	captureCancel context.CancelFunc
	capture       CaptureSource
	userID        int
	epoch         int
	closed        bool
}

func New(id string, userID int, analyzer Analyzer, responder Responder, recorder Recorder, cfg Config) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	return &Session{
		ID:        id,
		cfg:       cfg,
		analyzer:  analyzer,
		responder: responder,
		recorder:  recorder,
		userID:    userID,
		state:     StateIdle,
	}
}

// SetCaptureSource attaches (or detaches, with nil) the speech capture
// service. Replacing the source while capture is running stops it first.
func (s *Session) SetCaptureSource(src CaptureSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capturing {
		s.stopCaptureLocked()
	}
	s.capture = src
}

// SetInput replaces the pending input buffer (the typed form field).
func (s *Session) SetInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state == StateAnalyzing {
		return ErrAnalysisInFlight
	}
	s.input = text
	if s.state == StateIdle && strings.TrimSpace(text) != "" {
		s.state = StateCapturing
	}
	return nil
}

// Submit sends the dream narrative for analysis. It blocks until the
// analysis service resolves; the progress ticker runs concurrently and only
// ever touches the progress value. Rejects a second submit while one is in
// flight. On failure the session returns to capturing with input preserved.
func (s *Session) Submit(ctx context.Context, text string) (*Interpretation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state == StateAnalyzing {
		s.mu.Unlock()
		return nil, ErrAnalysisInFlight
	}
	s.stopCaptureLocked()
	s.state = StateAnalyzing
	s.input = text
	s.progress.begin()
	epoch := s.epoch
	s.mu.Unlock()

	stopTicks := s.startProgressTicks(epoch)
	actx, cancel := context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
	interp, err := s.analyzer.Analyze(actx, text, s.cfg.Locale)
	cancel()
	stopTicks()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		// Session was discarded while the call was in flight; the late
		// result must not be applied.
		return nil, ErrSessionClosed
	}
	if err != nil {
		s.state = StateCapturing
		s.progress.clear()
		logging.ErrorLogger.Error("dream analysis failed",
			zap.String("session_id", s.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	if interp.ID == "" {
		interp.ID = uuid.New().String()
	}
	if interp.CreatedAt.IsZero() {
		interp.CreatedAt = time.Now()
	}
	interp.SourceText = text
	s.interp = interp
	s.state = StateInterpreted
	s.progress.finish()
	s.scheduleProgressClear(epoch)
	s.appendLocked(RoleAssistant, interpretationReadyMessage)

	if s.recorder != nil {
		go s.recordInterpretation(s.userID, interp)
	}
	return s.interpretationLocked(), nil
}

// Feedback sets the interpretation's feedback mark (last write wins) and
// appends one acknowledgement message. The state does not change.
func (s *Session) Feedback(ctx context.Context, kind FeedbackKind) (*Message, error) {
	if kind != FeedbackPositive && kind != FeedbackNegative {
		return nil, fmt.Errorf("%w: unknown feedback kind %q", ErrInvalidInput, kind)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.interp == nil {
		s.mu.Unlock()
		return nil, ErrNoInterpretation
	}
	k := kind
	s.interp.Feedback = &k
	ack := s.appendLocked(RoleAssistant, feedbackAck(kind))
	interpID := s.interp.ID
	s.mu.Unlock()

	if s.recorder != nil {
		go s.recordFeedback(interpID, kind)
	}
	return &ack, nil
}

// Ask runs one conversational turn: the question is appended, the
// conversation service is called, and its reply is appended. A second Ask
// while a turn is in flight is rejected, never interleaved. On failure the
// question stays appended and the wrapped error is the failure marker; no
// assistant reply is fabricated.
func (s *Session) Ask(ctx context.Context, question string) (*Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.interp == nil {
		s.mu.Unlock()
		return nil, ErrNoInterpretation
	}
	if s.turnInFlight {
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	s.turnInFlight = true
	s.appendLocked(RoleUser, question)
	// The conversation begins with the question, not the reply: a failed
	// turn still leaves the session conversing.
	s.state = StateConversing
	history := make([]Message, len(s.messages))
	copy(history, s.messages)
	interp := s.interpretationLocked()
	epoch := s.epoch
	s.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, s.cfg.ConversationTimeout)
	answer, err := s.responder.Respond(rctx, interp, history, question)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turnInFlight = false
	if s.closed || epoch != s.epoch {
		return nil, ErrSessionClosed
	}
	if err != nil {
		logging.ErrorLogger.Error("conversation turn failed",
			zap.String("session_id", s.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrConversationFailed, err)
	}
	reply := s.appendLocked(RoleAssistant, answer)
	return &reply, nil
}

// ToggleCapture starts continuous speech capture, or stops it when already
// running. Returns whether capture is running after the call. Fails fast
// with ErrCaptureUnavailable when no capture source is configured.
func (s *Session) ToggleCapture(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	if s.capturing {
		s.stopCaptureLocked()
		return false, nil
	}
	if s.capture == nil {
		return false, ErrCaptureUnavailable
	}
	if s.state == StateAnalyzing {
		return false, ErrAnalysisInFlight
	}

	cctx, cancel := context.WithCancel(context.Background())
	ch, err := s.capture.Start(cctx)
	if err != nil {
		cancel()
		return false, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	s.capturing = true
	s.captureCancel = cancel
	s.prevState = s.state
	s.state = StateCapturing
	go s.consumeCapture(ch, s.epoch)
	return true, nil
}

// consumeCapture appends finalized recognition segments to the pending
// input buffer. It never touches the interpretation or transcript, and it
// stops mutating once analysis has begun or the session was superseded.
func (s *Session) consumeCapture(ch <-chan CaptureEvent, epoch int) {
	for ev := range ch {
		if !ev.IsFinal {
			continue // partial results are discarded
		}
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			continue
		}
		s.mu.Lock()
		if s.epoch == epoch && s.capturing && s.state != StateAnalyzing {
			if s.input != "" {
				s.input += " "
			}
			s.input += text
		}
		s.mu.Unlock()
	}
	// End-of-stream from the capture service stops capture.
	s.mu.Lock()
	if s.epoch == epoch && s.capturing {
		s.stopCaptureLocked()
	}
	s.mu.Unlock()
}

func (s *Session) stopCaptureLocked() {
	if s.captureCancel != nil {
		s.captureCancel()
		s.captureCancel = nil
	}
	if s.capturing {
		s.capturing = false
		if s.state == StateCapturing && s.prevState == StateIdle && strings.TrimSpace(s.input) == "" {
			s.state = StateIdle
		}
	}
}

// Close discards the session. Any active capture stream is stopped and
// in-flight analysis or conversation results are invalidated.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	s.stopCaptureLocked()
	s.progress.clear()
}

func (s *Session) recordInterpretation(userID int, interp *Interpretation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.recorder.RecordInterpretation(ctx, userID, interp); err != nil {
		logging.ErrorLogger.Error("failed to persist interpretation",
			zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (s *Session) recordFeedback(interpID string, kind FeedbackKind) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.recorder.RecordFeedback(ctx, interpID, kind); err != nil {
		logging.ErrorLogger.Error("failed to persist feedback",
			zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (s *Session) appendLocked(role Role, content string) Message {
	msg := Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

func (s *Session) interpretationLocked() *Interpretation {
	if s.interp == nil {
		return nil
	}
	cp := *s.interp
	cp.Symbols = append([]Symbol(nil), s.interp.Symbols...)
	cp.Insights = append([]string(nil), s.interp.Insights...)
	if s.interp.Feedback != nil {
		fb := *s.interp.Feedback
		cp.Feedback = &fb
	}
	return &cp
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Input returns the pending input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Capturing reports whether speech capture is running.
func (s *Session) Capturing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capturing
}

// Interpretation returns a copy of the stored interpretation, or nil.
func (s *Session) Interpretation() *Interpretation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interpretationLocked()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
