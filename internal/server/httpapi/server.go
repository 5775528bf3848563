// Package httpapi exposes the journal server's REST surface: auth, entry
// saves with attachment placeholders, binary uploads, and presigned
// downloads.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DAC098/tj2/internal/logging"
	"github.com/DAC098/tj2/internal/server/models"
	"github.com/DAC098/tj2/internal/server/services"
)

// UserService is the authentication surface the API needs.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// EntryService persists entries and mints attachment placeholders.
type EntryService interface {
	Save(ctx context.Context, userID string, entry *models.Entry, attached []services.AttachmentRequest) (*models.Entry, []*models.File, error)
}

// FileService stores attachment payloads and resolves downloads.
type FileService interface {
	StoreUpload(ctx context.Context, userID, entryID, fileID, mime string, payload []byte) (*models.File, error)
	DownloadURL(ctx context.Context, userID, entryID, fileID string) (string, error)
}

// Server is the HTTP API front of the journal server.
type Server struct {
	addr           string
	log            logging.Logger
	users          UserService
	entries        EntryService
	files          FileService
	jwtSecret      []byte
	maxUploadBytes int64
}

// NewServer wires the API routes over the given services.
func NewServer(addr string, log logging.Logger, users UserService, entries EntryService, files FileService, jwtSecret []byte, maxUploadBytes int64) *Server {
	return &Server{
		addr:           addr,
		log:            log,
		users:          users,
		entries:        entries,
		files:          files,
		jwtSecret:      jwtSecret,
		maxUploadBytes: maxUploadBytes,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)

	mux.Handle("POST /api/entries", s.withAuth(s.handleSaveEntry))
	mux.Handle("PUT /api/entries/{id}/files/{fileID}", s.withAuth(s.handleUploadFile))
	mux.Handle("GET /api/entries/{id}/files/{fileID}", s.withAuth(s.handleDownloadFile))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info(ctx, "http api listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
