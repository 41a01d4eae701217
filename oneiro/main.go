package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oneiro/oneiro/config"
	"oneiro/oneiro/controllers"
	"oneiro/oneiro/nlp"
	"oneiro/oneiro/routes"
	"oneiro/oneiro/services/analysis"
	"oneiro/oneiro/services/llm"
	"oneiro/oneiro/services/speech"
	"oneiro/oneiro/session"
	"oneiro/oneiro/sources/psql"
	"oneiro/oneiro/sources/psql/dao"
	"oneiro/oneiro/sources/storage"
	"oneiro/oneiro/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func newLLMClient(cfg config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "groq":
		return llm.NewGroqClient(cfg.GroqAPIKey)
	case "ollama":
		return llm.NewOllamaClient(cfg.OllamaBaseURL)
	default:
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
}

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	userDAO := dao.NewUserDAO(db.DB)
	dreamDAO := dao.NewDreamDAO(db.DB)
	messageDAO := dao.NewMessageDAO(db.DB)

	// Object storage is optional: without it capture audio is transcribed
	// and discarded.
	var store *storage.MinIOClient
	if cfg.MinIOEndpoint != "" {
		store, err = storage.NewMinIOClient(cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
	}

	svc := analysis.NewService(
		newLLMClient(cfg),
		nlp.NewAnalyzer(),
		nlp.NewMapper(cfg.SymbolDictPath),
		cfg.LLMModel,
		cfg.MaxTokens,
		cfg.Temperature,
	)

	sessionCfg := session.DefaultConfig()
	sessionCfg.AnalysisTimeout = cfg.AnalysisTimeout
	sessionCfg.ConversationTimeout = cfg.ConversationTimeout
	sessionCfg.ProgressInterval = cfg.ProgressInterval
	sessionCfg.ProgressCeiling = cfg.ProgressCeiling
	sessionCfg.ProgressClearDelay = cfg.ProgressClearDelay
	sessionCfg.Locale = cfg.DefaultLanguage
	sessions := session.NewManager(svc, svc, psql.NewRecorder(dreamDAO), sessionCfg)

	authCtrl := controllers.NewAuthController(userDAO, cfg)
	dreamsCtrl := controllers.NewDreamsController(sessions, dreamDAO, messageDAO)
	whisper := speech.NewWhisperClient(cfg.OpenAIAPIKey, cfg.WhisperModel)
	speechCtrl := controllers.NewSpeechController(whisper, store, int(cfg.MaxAudioBytes), cfg.DefaultLanguage)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/dreams", routes.DreamsRoutes(dreamsCtrl, cfg))
	r.Mount("/capture", routes.CaptureRoutes(sessions, speechCtrl, cfg))
	r.Mount("/speech", routes.SpeechRoutes(speechCtrl, cfg))

	srv := &http.Server{
		Addr:    ":8000",
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	logging.AppLogger.Info("oneiro listening", zap.String("addr", srv.Addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
