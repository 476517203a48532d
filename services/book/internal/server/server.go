package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fiftytwobooks/internal/ratelimit"
	"fiftytwobooks/internal/util"
	"fiftytwobooks/pkg/domain"
	"fiftytwobooks/services/book/internal/app"
)

const (
	booksPath       = "/api/books"
	multipartMemory = 8 << 20
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	CreateLimiter  *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
	MaxUploadBytes int64
}

// Server exposes HTTP endpoints for the book service.
type Server struct {
	app            *app.App
	createLimiter  *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	mux            *http.ServeMux
	maxUploadBytes int64
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app is required")
	}
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	s := &Server{
		app:            cfg.App,
		createLimiter:  cfg.CreateLimiter,
		trustedProxies: cfg.TrustedProxies,
		mux:            http.NewServeMux(),
		maxUploadBytes: maxUploadBytes,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc(booksPath, s.handleBooks)
	s.mux.HandleFunc(booksPath+"/", s.handleBookByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBook(w, r)
	case http.MethodGet:
		s.handleListBooks(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// /api/books/{id}
func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, booksPath+"/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGetBook(w, r, id)
	case http.MethodDelete:
		s.handleDeleteBook(w, r, id)
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	if s.createLimiter != nil && !s.createLimiter.Allow(r.Context(), util.ClientIP(r, s.trustedProxies)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := app.CreateBookInput{
		Title:  r.FormValue("title"),
		Author: r.FormValue("author"),
		Status: r.FormValue("status"),
	}
	file, header, err := r.FormFile("imageFile")
	switch {
	case err == nil:
		defer file.Close()
		in.Attachment = &domain.Attachment{Filename: header.Filename, Size: header.Size, Content: file}
	case errors.Is(err, http.ErrMissingFile):
	default:
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	book, err := s.app.CreateBook(r.Context(), in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.app.ListBooks(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if books == nil {
		books = []domain.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request, id string) {
	book, ok, err := s.app.GetBook(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if !ok {
		notFound(w, "book not found")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok, err := s.app.GetBook(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	} else if !ok {
		notFound(w, "book not found")
		return
	}
	deleted, err := s.app.DeleteBook(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if !deleted {
		// Removed by a concurrent request after the existence check.
		notFound(w, "book not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid status")
	case errors.Is(err, app.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "title and author are required")
	case errors.Is(err, app.ErrUploadFailed):
		writeError(w, http.StatusInternalServerError, "image upload failed")
	default:
		util.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCodeForBook(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get(util.RequestIDHeader)),
	})
}

func errorCodeForBook(status int, msg string) string {
	switch strings.ToLower(strings.TrimSpace(msg)) {
	case "invalid status":
		return "BOOK_INVALID_STATUS"
	case "title and author are required":
		return "BOOK_FIELDS_REQUIRED"
	case "invalid form data":
		return "BOOK_INVALID_FORM"
	case "file too large":
		return "BOOK_FILE_TOO_LARGE"
	case "image upload failed":
		return "BOOK_UPLOAD_FAILED"
	case "book not found":
		return "BOOK_NOT_FOUND"
	case "too many requests":
		return "SYSTEM_RATE_LIMITED"
	case "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case "not found":
		return "SYSTEM_NOT_FOUND"
	}

	switch status {
	case http.StatusBadRequest:
		return "BOOK_INVALID_REQUEST"
	case http.StatusNotFound:
		return "BOOK_NOT_FOUND"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}
