// oneiro/controllers/dreams.go
package controllers

import (
	"context"
	"errors"

	"oneiro/oneiro/services/analysis"
	"oneiro/oneiro/session"
	"oneiro/oneiro/sources/psql/dao"
	"oneiro/oneiro/sources/psql/models"
	"oneiro/oneiro/utils/logging"
	"oneiro/oneiro/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// DreamsController coordinates live sessions with the durable history.
// Session state transitions live in the session package; this layer only
// resolves IDs, persists conversation turns, and shapes responses.
type DreamsController struct {
	sessions *session.Manager
	dreams   *dao.DreamDAO
	messages *dao.MessageDAO
}

func NewDreamsController(sessions *session.Manager, dreams *dao.DreamDAO, messages *dao.MessageDAO) *DreamsController {
	return &DreamsController{
		sessions: sessions,
		dreams:   dreams,
		messages: messages,
	}
}

func (c *DreamsController) CreateSession(ctx context.Context, userID int) *session.Session {
	return c.sessions.Create(userID)
}

func (c *DreamsController) get(sessionID string) (*session.Session, error) {
	s, ok := c.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// SetInput mirrors the narrative text field into the session.
func (c *DreamsController) SetInput(sessionID, text string) error {
	s, err := c.get(sessionID)
	if err != nil {
		return err
	}
	return s.SetInput(text)
}

// Analyze submits the narrative and blocks until interpretation resolves.
func (c *DreamsController) Analyze(ctx context.Context, sessionID, text string) (*session.Interpretation, error) {
	s, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, text)
}

func (c *DreamsController) Progress(sessionID string) (*types.ProgressResponse, error) {
	s, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}
	percent, visible := s.Progress()
	return &types.ProgressResponse{
		Percent: percent,
		Visible: visible,
		State:   s.State().String(),
	}, nil
}

func (c *DreamsController) Feedback(ctx context.Context, sessionID string, kind string) (*session.Message, error) {
	s, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Feedback(ctx, session.FeedbackKind(kind))
}

// Ask runs one follow-up turn and persists both sides of it. Persistence
// failures are logged, never surfaced: the live transcript is the source
// of truth for the open session.
func (c *DreamsController) Ask(ctx context.Context, userID int, sessionID, question string) (*session.Message, error) {
	s, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}
	reply, err := s.Ask(ctx, question)
	if err != nil {
		return nil, err
	}
	if _, err := c.messages.SaveMessage(ctx, sessionID, userID, string(session.RoleUser), question); err != nil {
		logging.ErrorLogger.Error("failed to persist question", zap.String("session_id", sessionID), zap.Error(err))
	}
	if _, err := c.messages.SaveMessage(ctx, sessionID, userID, string(reply.Role), reply.Content); err != nil {
		logging.ErrorLogger.Error("failed to persist reply", zap.String("session_id", sessionID), zap.Error(err))
	}
	return reply, nil
}

func (c *DreamsController) Messages(sessionID string) ([]session.Message, error) {
	s, err := c.get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Messages(), nil
}

func (c *DreamsController) ToggleCapture(ctx context.Context, sessionID string) (bool, error) {
	s, err := c.get(sessionID)
	if err != nil {
		return false, err
	}
	return s.ToggleCapture(ctx)
}

func (c *DreamsController) CloseSession(sessionID string) bool {
	return c.sessions.Close(sessionID)
}

// Visualize builds an image-generation prompt from the session's current
// interpretation.
func (c *DreamsController) Visualize(sessionID string) (string, error) {
	s, err := c.get(sessionID)
	if err != nil {
		return "", err
	}
	interp := s.Interpretation()
	if interp == nil {
		return "", session.ErrNoInterpretation
	}
	return analysis.VisualizationPrompt(interp.Symbols), nil
}

// ListDreams returns the user's persisted dream history, newest first.
func (c *DreamsController) ListDreams(ctx context.Context, userID int) ([]models.Dream, error) {
	return c.dreams.ListDreamsByUser(ctx, userID)
}

// GetInterpretation loads one persisted interpretation row.
func (c *DreamsController) GetInterpretation(ctx context.Context, id string) (*models.Interpretation, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return c.dreams.GetInterpretationByID(ctx, parsed)
}
