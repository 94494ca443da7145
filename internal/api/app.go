package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/pageturn/bookchat/internal/config"
	"github.com/pageturn/bookchat/internal/database"
	"github.com/pageturn/bookchat/internal/server"
	"github.com/pageturn/bookchat/internal/stats"
	"github.com/teris-io/shortid"
)

type BookChatApp struct {
	log            *log.Logger
	db             database.BookChatRepository
	mux            *http.Server
	cs             *server.ChatServer
	stats          stats.StatsProvider
	signingKey     []byte
	allowedOrigins []string
	uploadDir      string
	// overridable for tests
	generateShortId func() (string, error)
}

func NewBookChatApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, db database.BookChatRepository, sp stats.StatsProvider, cfg *config.Config) *BookChatApp {
	s := &BookChatApp{
		log:             logger,
		db:              db,
		cs:              cs,
		stats:           sp,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		uploadDir:       cfg.UploadDir,
		generateShortId: shortid.Generate,
	}

	sp.RegisterMetric(stats.FilesUploaded)

	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("PUT /api/auth/profile", s.authMiddleware(s.updateProfile))
	mux.Handle("GET /api/chat/users", s.authMiddleware(s.listConversations))
	mux.Handle("GET /api/chat/messages/{userId}", s.authMiddleware(s.getConversation))
	mux.Handle("POST /api/chat/send", s.authMiddleware(s.sendMessage))
	mux.Handle("POST /api/chat/upload", s.authMiddleware(s.uploadFile))
	mux.Handle("GET /api/chat/user/{userId}", s.authMiddleware(s.getUserInfo))
	mux.Handle("GET /api/chat/ws", s.authMiddleware(s.serveWs))
	mux.HandleFunc("GET /api/books", s.listBooks)
	mux.HandleFunc("GET /api/books/{id}", s.getBook)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *BookChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *BookChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
