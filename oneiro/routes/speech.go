// oneiro/routes/speech.go
package routes

import (
	"encoding/json"
	"io"
	"net/http"

	"oneiro/oneiro/config"
	"oneiro/oneiro/controllers"
	"oneiro/oneiro/middlewares"

	"github.com/go-chi/chi/v5"
)

func SpeechRoutes(ctrl *controllers.SpeechController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Get("/languages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"languages": ctrl.Languages()})
	})

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// One-shot transcription of an uploaded audio segment
		gr.Post("/transcribe", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "missing file", http.StatusBadRequest)
				return
			}
			defer file.Close()
			audio, err := io.ReadAll(file)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			resp, err := ctrl.Transcribe(
				r.Context(),
				r.FormValue("session_id"),
				audio,
				header.Filename,
				r.FormValue("language"),
				header.Header.Get("Content-Type"),
			)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		})
	})
	return r
}
