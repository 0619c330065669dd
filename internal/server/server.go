package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"healspace-backend/internal/booking"
	"healspace-backend/internal/config"
	"healspace-backend/internal/db"
	"healspace-backend/internal/guidance"
	"healspace-backend/internal/sentiment"
	"healspace-backend/internal/store"
	"healspace-backend/internal/types"
)

type Server struct {
	router        *chi.Mux
	cfg           config.Config
	store         *store.MemoryStore
	database      *db.DB
	databaseStore *store.DatabaseStore
	tokenStore    *store.FileTokenStore
	oauthCfg      *oauth2.Config
	guide         *guidance.Orchestrator
	sentiment     *sentiment.Analyzer
	booking       *booking.Service
}

func NewServer(cfg config.Config) (*Server, error) {
	client := openai.NewClient(cfg.OpenAIAPIKey)

	var notifier booking.Notifier = booking.LogNotifier{}
	if cfg.SMTPHost != "" {
		notifier = booking.NewSMTPNotifier(booking.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	return newServer(cfg, client, notifier)
}

// newServer wires the server against an injected completion client and
// notifier so tests can run without network access.
func newServer(cfg config.Config, client guidance.ChatCompleter, notifier booking.Notifier) (*Server, error) {
	spec, err := guidance.LoadPromptSpec(cfg.PromptsFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("prompts file %s not found, using built-in prompts", cfg.PromptsFile)
		} else {
			return nil, fmt.Errorf("failed to load prompt spec: %w", err)
		}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	oCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       cfg.GoogleScopes,
		Endpoint:     google.Endpoint,
	}

	var database *db.DB
	var databaseStore *store.DatabaseStore
	if cfg.DatabaseURL != "" {
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Println("database connection established")
		if err := database.RunMigrations("./migrations"); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		databaseStore = store.NewDatabaseStore(database)
	} else {
		log.Println("warning: DB_URL not provided, using in-memory storage only")
	}

	s := &Server{
		router:        r,
		cfg:           cfg,
		store:         store.NewMemoryStore(40),
		database:      database,
		databaseStore: databaseStore,
		tokenStore:    store.NewFileTokenStore(cfg.GoogleTokenFile),
		oauthCfg:      oCfg,
		guide:         guidance.NewOrchestrator(client, cfg.Model, spec),
		sentiment:     sentiment.NewAnalyzer(client, cfg.Model),
		booking:       booking.NewService(notifier, cfg.MeetingBaseURL),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	// Journal
	s.router.Post("/api/journal/sentiment", s.handleJournalSentiment)
	s.router.Post("/api/journal/entries", s.handleCreateJournalEntry)
	s.router.Get("/api/journal/entries", s.handleListJournalEntries)
	// Therapist marketplace
	s.router.Get("/api/therapists", s.handleListTherapists)
	s.router.Get("/api/therapists/specialties", s.handleListSpecialties)
	s.router.Get("/api/therapists/languages", s.handleListLanguages)
	s.router.Post("/api/therapists/{id}/book", s.handleBookTherapist)
	// Chat requests
	s.router.Post("/api/chat-requests", s.handleCreateChatRequest)
	s.router.Post("/api/chat-requests/{id}/status", s.handleUpdateChatRequest)
	// Circles
	s.router.Get("/api/circles", s.handleListCircles)
	s.router.Post("/api/circles/{id}/join", s.handleJoinCircle)
	// Signup + parental consent
	s.router.Post("/api/signup", s.handleSignup)
	s.router.Post("/api/signup/consent", s.handleConsent)
	// Google OAuth
	s.router.Get("/api/auth/status", s.handleAuthStatus)
	s.router.Get("/api/auth/google", s.handleGoogleAuth)
	s.router.Get("/api/auth/google/callback", s.handleGoogleCallback)
}

func (s *Server) Router() http.Handler { return s.router }

// Close releases the database connection when one was opened.
func (s *Server) Close() error {
	if s.database != nil {
		return s.database.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.database != nil {
		if err := s.database.HealthCheck(); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// handleChat runs one guidance turn. History comes from the request when
// the client manages its own transcript, otherwise from the session store.
// Completion-service failures never surface as HTTP errors here: the
// orchestrator converts them to the fallback reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := s.getOrCreateSessionID(r, w)

	history := historyFromRequest(req.History)
	if history == nil {
		history = historyFromTranscript(s.store.Get(sid))
	}

	result := s.guide.Guide(r.Context(), guidance.Request{
		Message: req.Message,
		History: history,
	})

	if strings.TrimSpace(req.Message) != "" {
		s.store.Append(sid, store.Message{Role: string(guidance.RoleUser), Content: req.Message})
		s.store.Append(sid, store.Message{Role: string(guidance.RoleAssistant), Content: result.Response})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(types.ChatResponse{
		SessionID: sid,
		Response:  result.Response,
		Error:     result.Error,
	})
}

func historyFromRequest(turns []types.ChatTurn) []guidance.Turn {
	if turns == nil {
		return nil
	}
	out := make([]guidance.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, guidance.Turn{Role: guidance.Role(t.Role), Text: t.Text})
	}
	return out
}

func historyFromTranscript(msgs []store.Message) []guidance.Turn {
	out := make([]guidance.Turn, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, guidance.Turn{Role: guidance.Role(m.Role), Text: m.Content})
	}
	return out
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

func newSessionID() string {
	return fmt.Sprintf("s_%d", time.Now().UnixNano())
}

// getSessionID retrieves the session ID from cookie, header, or query.
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets the existing session ID or creates a new one,
// setting the cookie.
func (s *Server) getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = newSessionID()
		log.Printf("[session] creating new session: %s for endpoint: %s", sid, r.URL.Path)
		SetSessionCookie(w, sid)
	}
	return sid
}
