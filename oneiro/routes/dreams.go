// oneiro/routes/dreams.go
package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"oneiro/oneiro/config"
	"oneiro/oneiro/controllers"
	"oneiro/oneiro/middlewares"
	"oneiro/oneiro/session"
	"oneiro/oneiro/utils/types"

	"github.com/go-chi/chi/v5"
)

func handleDreamsJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(res)
	}
}

// statusFor maps session errors onto HTTP statuses. Unknown errors are
// treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, controllers.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoInterpretation):
		return http.StatusConflict
	case errors.Is(err, session.ErrAnalysisInFlight), errors.Is(err, session.ErrTurnInFlight):
		return http.StatusConflict
	case errors.Is(err, session.ErrCaptureUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, session.ErrAnalysisFailed), errors.Is(err, session.ErrConversationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func DreamsRoutes(ctrl *controllers.DreamsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// Open a session
		gr.Post("/", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			userID := r.Context().Value(middlewares.UserIDKey).(int)
			s := ctrl.CreateSession(r.Context(), userID)
			return map[string]string{
				"session_id": s.ID,
				"state":      s.State().String(),
			}, http.StatusCreated, nil
		}))

		// Mirror the typed narrative field
		gr.Put("/{session_id}/input", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			var req types.AnalyzeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			sessionID := chi.URLParam(r, "session_id")
			if err := ctrl.SetInput(sessionID, req.Text); err != nil {
				return nil, statusFor(err), err
			}
			return map[string]string{"status": "ok"}, http.StatusOK, nil
		}))

		// Submit for analysis; blocks until the interpretation resolves
		gr.Post("/{session_id}/analyze", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			var req types.AnalyzeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			sessionID := chi.URLParam(r, "session_id")
			interp, err := ctrl.Analyze(r.Context(), sessionID, req.Text)
			if err != nil {
				return nil, statusFor(err), err
			}
			return interp, http.StatusOK, nil
		}))

		gr.Get("/{session_id}/progress", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			resp, err := ctrl.Progress(chi.URLParam(r, "session_id"))
			if err != nil {
				return nil, statusFor(err), err
			}
			return resp, http.StatusOK, nil
		}))

		gr.Post("/{session_id}/feedback", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			var req types.FeedbackRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			ack, err := ctrl.Feedback(r.Context(), chi.URLParam(r, "session_id"), req.Kind)
			if err != nil {
				return nil, statusFor(err), err
			}
			return ack, http.StatusOK, nil
		}))

		gr.Post("/{session_id}/ask", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			var req types.ConversationRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			userID := r.Context().Value(middlewares.UserIDKey).(int)
			reply, err := ctrl.Ask(r.Context(), userID, chi.URLParam(r, "session_id"), req.Question)
			if err != nil {
				return nil, statusFor(err), err
			}
			return reply, http.StatusOK, nil
		}))

		gr.Get("/{session_id}/messages", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			msgs, err := ctrl.Messages(chi.URLParam(r, "session_id"))
			if err != nil {
				return nil, statusFor(err), err
			}
			return msgs, http.StatusOK, nil
		}))

		// Toggle microphone capture on the live session
		gr.Post("/{session_id}/capture", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			capturing, err := ctrl.ToggleCapture(r.Context(), chi.URLParam(r, "session_id"))
			if err != nil {
				return nil, statusFor(err), err
			}
			return map[string]bool{"capturing": capturing}, http.StatusOK, nil
		}))

		// Image-generation prompt for the current interpretation
		gr.Get("/{session_id}/visualize", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			prompt, err := ctrl.Visualize(chi.URLParam(r, "session_id"))
			if err != nil {
				return nil, statusFor(err), err
			}
			return map[string]string{"prompt": prompt}, http.StatusOK, nil
		}))

		gr.Delete("/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			if !ctrl.CloseSession(chi.URLParam(r, "session_id")) {
				http.Error(w, controllers.ErrSessionNotFound.Error(), http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		// Persisted history
		gr.Get("/history", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			userID := r.Context().Value(middlewares.UserIDKey).(int)
			dreams, err := ctrl.ListDreams(r.Context(), userID)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return dreams, http.StatusOK, nil
		}))

		gr.Get("/interpretations/{id}", handleDreamsJSON(func(r *http.Request) (any, int, error) {
			row, err := ctrl.GetInterpretation(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			if row == nil {
				return nil, http.StatusNotFound, errors.New("interpretation not found")
			}
			return row, http.StatusOK, nil
		}))
	})
	return r
}
