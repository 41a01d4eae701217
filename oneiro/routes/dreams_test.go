package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oneiro/oneiro/config"
	"oneiro/oneiro/controllers"
	"oneiro/oneiro/session"
	"oneiro/oneiro/sources/psql"
	"oneiro/oneiro/sources/psql/dao"
	"oneiro/oneiro/sources/psql/models"
	"oneiro/oneiro/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type stubAnalyzer struct {
	err error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, text, locale string) (*session.Interpretation, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &session.Interpretation{
		ID:         uuid.New().String(),
		SourceText: text,
		Symbols:    []session.Symbol{{Symbol: "ocean", Meaning: "the unconscious", Confidence: 0.7}},
		Insights:   []string{"You may be processing deep emotions."},
		Summary:    "This dream appears to reflect inner depths.",
		CreatedAt:  time.Now(),
	}, nil
}

type stubResponder struct{}

func (r *stubResponder) Respond(ctx context.Context, interp *session.Interpretation, history []session.Message, question string) (string, error) {
	return "The ocean in your dream points inward.", nil
}

// --- Helpers ---
func setupRouter(t *testing.T, analyzer session.Analyzer) (chi.Router, int) {
	logging.InitLogger()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := psql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	user := models.User{Username: "dreamer", Email: "dreamer@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	dreamDAO := dao.NewDreamDAO(db)
	messageDAO := dao.NewMessageDAO(db)

	cfg := session.DefaultConfig()
	cfg.ProgressInterval = 2 * time.Millisecond
	cfg.ProgressClearDelay = time.Second
	manager := session.NewManager(analyzer, &stubResponder{}, psql.NewRecorder(dreamDAO), cfg)
	ctrl := controllers.NewDreamsController(manager, dreamDAO, messageDAO)

	return DreamsRoutes(ctrl, config.Config{JWTSecret: testSecret}), user.ID
}

func authToken(t *testing.T, userID int) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, r chi.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func createSession(t *testing.T, r chi.Router, token string) string {
	rr := doJSON(t, r, "POST", "/", token, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}
	if resp["state"] != "idle" {
		t.Errorf("expected idle state, got %q", resp["state"])
	}
	return resp["session_id"]
}

// --- Tests ---
func TestDreamsRequireAuth(t *testing.T) {
	r, _ := setupRouter(t, &stubAnalyzer{})
	rr := doJSON(t, r, "POST", "/", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rr.Code)
	}
}

func TestAnalyzeFlow(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "POST", "/"+sessionID+"/analyze", token, map[string]string{
		"text": "I was swimming in a vast ocean",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var interp session.Interpretation
	if err := json.Unmarshal(rr.Body.Bytes(), &interp); err != nil {
		t.Fatalf("invalid interpretation: %v", err)
	}
	if interp.Summary == "" || len(interp.Symbols) == 0 {
		t.Errorf("incomplete interpretation: %+v", interp)
	}

	rr = doJSON(t, r, "GET", "/"+sessionID+"/progress", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var prog struct {
		Percent int    `json:"percent"`
		Visible bool   `json:"visible"`
		State   string `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &prog); err != nil {
		t.Fatalf("invalid progress: %v", err)
	}
	if prog.Percent != 100 || !prog.Visible || prog.State != "interpreted" {
		t.Errorf("unexpected progress after analyze: %+v", prog)
	}
}

func TestAnalyzeEmptyTextRejected(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "POST", "/"+sessionID+"/analyze", token, map[string]string{"text": "   "})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty text, got %d", rr.Code)
	}
}

func TestAnalyzeFailureIsBadGateway(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{err: errors.New("model unavailable")})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "POST", "/"+sessionID+"/analyze", token, map[string]string{
		"text": "a dream that will not resolve",
	})
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)

	rr := doJSON(t, r, "GET", "/"+uuid.New().String()+"/progress", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestFeedbackAndConversation(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "POST", "/"+sessionID+"/analyze", token, map[string]string{
		"text": "I was swimming in a vast ocean",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d", rr.Code)
	}

	rr = doJSON(t, r, "POST", "/"+sessionID+"/feedback", token, map[string]string{"kind": "positive"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for feedback, got %d: %s", rr.Code, rr.Body.String())
	}
	var ack session.Message
	if err := json.Unmarshal(rr.Body.Bytes(), &ack); err != nil {
		t.Fatalf("invalid ack: %v", err)
	}
	if ack.Role != session.RoleAssistant {
		t.Errorf("expected assistant ack, got %+v", ack)
	}

	rr = doJSON(t, r, "POST", "/"+sessionID+"/feedback", token, map[string]string{"kind": "sideways"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", rr.Code)
	}

	rr = doJSON(t, r, "POST", "/"+sessionID+"/ask", token, map[string]string{
		"question": "What does the ocean mean?",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for ask, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, "GET", "/"+sessionID+"/messages", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for messages, got %d", rr.Code)
	}
	var msgs []session.Message
	if err := json.Unmarshal(rr.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("invalid messages: %v", err)
	}
	// interpretation-ready note, feedback ack, question, reply
	if len(msgs) != 4 {
		t.Errorf("expected 4 messages, got %d: %+v", len(msgs), msgs)
	}
}

func TestFeedbackBeforeAnalyzeIsConflict(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "POST", "/"+sessionID+"/feedback", token, map[string]string{"kind": "positive"})
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 before interpretation, got %d", rr.Code)
	}
}

func TestVisualizePrompt(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	doJSON(t, r, "POST", "/"+sessionID+"/analyze", token, map[string]string{
		"text": "I was swimming in a vast ocean",
	})
	rr := doJSON(t, r, "GET", "/"+sessionID+"/visualize", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp["prompt"] == "" {
		t.Errorf("expected non-empty prompt")
	}
}

func TestCloseSession(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "DELETE", "/"+sessionID, token, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = doJSON(t, r, "GET", "/"+sessionID+"/progress", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 after close, got %d", rr.Code)
	}
}

func TestHistoryListsPersistedDreams(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	doJSON(t, r, "POST", "/"+sessionID+"/analyze", token, map[string]string{
		"text": "I was swimming in a vast ocean",
	})

	// persistence runs off the request path
	deadline := time.Now().Add(2 * time.Second)
	for {
		rr := doJSON(t, r, "GET", "/history", token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 for history, got %d", rr.Code)
		}
		var dreams []models.Dream
		if err := json.Unmarshal(rr.Body.Bytes(), &dreams); err != nil {
			t.Fatalf("invalid history: %v", err)
		}
		if len(dreams) == 1 {
			if dreams[0].Text != "I was swimming in a vast ocean" {
				t.Errorf("unexpected dream text: %q", dreams[0].Text)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("dream never persisted, got %d rows", len(dreams))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSetInputMovesState(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "PUT", "/"+sessionID+"/input", token, map[string]string{"text": "a flying dream"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = doJSON(t, r, "GET", "/"+sessionID+"/progress", token, nil)
	var prog struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &prog); err != nil {
		t.Fatalf("invalid progress: %v", err)
	}
	if prog.State != "capturing" {
		t.Errorf("expected capturing after input, got %q", prog.State)
	}
}

func TestCaptureWithoutSourceIsUnavailable(t *testing.T) {
	r, userID := setupRouter(t, &stubAnalyzer{})
	token := authToken(t, userID)
	sessionID := createSession(t, r, token)

	rr := doJSON(t, r, "POST", "/"+sessionID+"/capture", token, nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without capture source, got %d", rr.Code)
	}
}
