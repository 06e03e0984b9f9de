// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"prochecka/internal/app"

	"go.uber.org/zap"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	assess   *app.AssessmentService
	guests   *app.GuestService
	chat     *app.ChatService
	progress *app.ProgressService
	authSvc  *app.AuthService

	oidcConfig OIDCConfig
	log        *zap.SugaredLogger
	webDir     string
}

// New creates a Server wired to the given application services.
func New(as *app.AssessmentService, gs *app.GuestService, cs *app.ChatService, ps *app.ProgressService, auth *app.AuthService, oidcCfg OIDCConfig, log *zap.SugaredLogger, webDir string) *Server {
	return &Server{
		assess:     as,
		guests:     gs,
		chat:       cs,
		progress:   ps,
		authSvc:    auth,
		oidcConfig: oidcCfg,
		log:        log,
		webDir:     webDir,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/assessment/features", s.handleFeatures)
	api.HandleFunc("/assessment", s.handleAssessment)

	api.HandleFunc("/action-plan", s.handlePlan)
	api.HandleFunc("/action-plan/task", s.handlePlanTask)

	api.HandleFunc("/guest", s.handleGuest)
	api.HandleFunc("/guest/convert", s.handleGuestConvert)

	api.HandleFunc("/chat", s.handleChat)
	api.HandleFunc("/chat/history", s.handleChatHistory)

	api.HandleFunc("/progress/diet", s.handleProgress)
	api.HandleFunc("/progress/exercise", s.handleProgress)

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/register", s.handleRegister)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.HandleFunc("/config", s.handleConfig)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", s.resolveUser(api)))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
