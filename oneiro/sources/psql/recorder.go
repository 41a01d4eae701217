package psql

import (
	"context"
	"fmt"

	"oneiro/oneiro/session"
	"oneiro/oneiro/sources/psql/dao"
	"oneiro/oneiro/sources/psql/models"
	"oneiro/oneiro/utils/jsonutils"

	"github.com/google/uuid"
)

// Recorder persists finished interpretations and feedback on behalf of a
// session. Sessions call it off the request path, so failures are
// returned for logging rather than surfaced to the user.
type Recorder struct {
	dreams *dao.DreamDAO
}

func NewRecorder(dreams *dao.DreamDAO) *Recorder {
	return &Recorder{dreams: dreams}
}

func (r *Recorder) RecordInterpretation(ctx context.Context, userID int, interp *session.Interpretation) error {
	id, err := uuid.Parse(interp.ID)
	if err != nil {
		return fmt.Errorf("invalid interpretation id %q: %w", interp.ID, err)
	}

	dream := models.Dream{
		UserID: userID,
		Text:   interp.SourceText,
	}
	row := models.Interpretation{
		ID:            id,
		Symbols:       jsonutils.ToJSON(interp.Symbols),
		Insights:      jsonutils.ToJSON(interp.Insights),
		EmotionalTone: interp.EmotionalTone,
		Summary:       interp.Summary,
		CreatedAt:     interp.CreatedAt,
	}
	return r.dreams.CreateDreamWithInterpretation(ctx, &dream, &row)
}

func (r *Recorder) RecordFeedback(ctx context.Context, interpretationID string, kind session.FeedbackKind) error {
	id, err := uuid.Parse(interpretationID)
	if err != nil {
		return fmt.Errorf("invalid interpretation id %q: %w", interpretationID, err)
	}
	return r.dreams.SetFeedback(ctx, id, string(kind))
}
