// oneiro/routes/capture.go
package routes

import (
	"encoding/json"
	"net/http"

	"oneiro/oneiro/config"
	"oneiro/oneiro/controllers"
	"oneiro/oneiro/services/speech"
	"oneiro/oneiro/session"
	"oneiro/oneiro/utils/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// CaptureRoutes serves the dictation websocket. The first frame must be a
// CaptureInit carrying the JWT and session id; after that, text frames are
// recognized-speech events and binary frames are raw audio segments sent
// through the transcriber. Only final segments reach the session input.
func CaptureRoutes(sessions *session.Manager, speechCtrl *controllers.SpeechController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var init types.CaptureInit
		if err := json.Unmarshal(data, &init); err != nil {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid json"}`))
			return
		}

		token, err := jwt.Parse(init.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid token"}`))
			conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return
		}

		sess, ok := sessions.Get(init.SessionID)
		if !ok {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"session not found"}`))
			conn.Close(websocket.StatusPolicyViolation, "session not found")
			return
		}

		feed := speech.NewFeed()
		defer feed.Close()
		sess.SetCaptureSource(feed)

		capturing, err := sess.ToggleCapture(ctx)
		if err != nil || !capturing {
			msg := "capture unavailable"
			if err != nil {
				msg = err.Error()
			}
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"`+msg+`"}`))
			conn.Close(websocket.StatusPolicyViolation, "capture rejected")
			return
		}
		conn.Write(ctx, websocket.MessageText, []byte(`{"status":"capturing"}`))

		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			switch typ {
			case websocket.MessageText:
				var frame types.CaptureFrame
				if err := json.Unmarshal(data, &frame); err != nil {
					conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid frame"}`))
					continue
				}
				feed.Push(session.CaptureEvent{Text: frame.Text, IsFinal: frame.IsFinal})
			case websocket.MessageBinary:
				if speechCtrl == nil || !speechCtrl.Enabled() {
					conn.Write(ctx, websocket.MessageText, []byte(`{"error":"transcription not configured"}`))
					continue
				}
				resp, err := speechCtrl.Transcribe(ctx, init.SessionID, data, "segment.wav", "", "audio/wav")
				if err != nil {
					conn.Write(ctx, websocket.MessageText, []byte(`{"error":"transcription failed"}`))
					continue
				}
				feed.Push(session.CaptureEvent{Text: resp.Transcription, IsFinal: true})
				out, _ := json.Marshal(resp)
				conn.Write(ctx, websocket.MessageText, out)
			}
		}
	})
	return r
}
