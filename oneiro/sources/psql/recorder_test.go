package psql

import (
	"context"
	"strings"
	"testing"
	"time"

	"oneiro/oneiro/session"
	"oneiro/oneiro/sources/psql/dao"
	"oneiro/oneiro/sources/psql/models"
	"oneiro/oneiro/utils/logging"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRecorder(t *testing.T) (*Recorder, *dao.DreamDAO, int) {
	logging.InitLogger()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	user := models.User{Username: "dreamer", Email: "dreamer@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	dreams := dao.NewDreamDAO(db)
	return NewRecorder(dreams), dreams, user.ID
}

func TestRecordInterpretationPersistsRow(t *testing.T) {
	rec, dreams, userID := setupRecorder(t)

	interp := &session.Interpretation{
		ID:         uuid.New().String(),
		SourceText: "I was flying over an ocean",
		Symbols: []session.Symbol{
			{Symbol: "flying", Meaning: "freedom", Confidence: 0.7},
		},
		Insights:      []string{"You may be seeking release from pressure."},
		EmotionalTone: "positive",
		Summary:       "This dream appears to reflect a desire for freedom.",
		CreatedAt:     time.Now(),
	}
	if err := rec.RecordInterpretation(context.Background(), userID, interp); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	row, err := dreams.GetInterpretationByID(context.Background(), uuid.MustParse(interp.ID))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if row == nil {
		t.Fatalf("interpretation row missing")
	}
	if !strings.Contains(row.Symbols, "flying") {
		t.Errorf("symbols not serialized: %s", row.Symbols)
	}
	list, _ := dreams.ListDreamsByUser(context.Background(), userID)
	if len(list) != 1 || list[0].Text != interp.SourceText {
		t.Errorf("dream row mismatch: %+v", list)
	}
}

func TestRecordFeedbackUpdatesRow(t *testing.T) {
	rec, dreams, userID := setupRecorder(t)

	interp := &session.Interpretation{
		ID:         uuid.New().String(),
		SourceText: "a locked door",
		Summary:    "s",
		CreatedAt:  time.Now(),
	}
	if err := rec.RecordInterpretation(context.Background(), userID, interp); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := rec.RecordFeedback(context.Background(), interp.ID, session.FeedbackPositive); err != nil {
		t.Fatalf("feedback failed: %v", err)
	}
	row, _ := dreams.GetInterpretationByID(context.Background(), uuid.MustParse(interp.ID))
	if row.Feedback == nil || *row.Feedback != "positive" {
		t.Errorf("feedback not persisted: %v", row.Feedback)
	}
}

func TestRecordFeedbackRejectsBadID(t *testing.T) {
	rec, _, _ := setupRecorder(t)
	if err := rec.RecordFeedback(context.Background(), "not-a-uuid", session.FeedbackPositive); err == nil {
		t.Errorf("expected error for malformed id")
	}
}
