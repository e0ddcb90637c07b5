package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"veriscan/internal/api"
	"veriscan/internal/config"
	"veriscan/internal/logging"
	"veriscan/internal/reconcile"
	"veriscan/internal/session"
	"veriscan/internal/store"
)

// maxUploadBytes caps document image uploads.
const maxUploadBytes = 32 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("POST /api/documents", srv.handleProcess)
	mux.HandleFunc("GET /api/documents", srv.handleList)
	mux.HandleFunc("GET /api/documents/{id}", srv.handleGet)
	mux.HandleFunc("POST /api/documents/{id}/verify", srv.handleVerify)
	mux.HandleFunc("POST /api/documents/{id}/reject", srv.handleReject)
	mux.HandleFunc("POST /api/documents/{id}/flush", srv.handleFlush)
	mux.HandleFunc("GET /api/documents/{id}/report", srv.handleReport)
	mux.HandleFunc("POST /api/documents/{id}/fields/{kind}/{action}", srv.handleFieldAction)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status()
	documents := make(map[string]int, len(status.Documents))
	for state, count := range status.Documents {
		documents[string(state)] = count
	}
	dependencies := make([]api.DependencyStatus, 0, len(status.Dependencies))
	for _, dep := range status.Dependencies {
		dependencies = append(dependencies, api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		StorePath:    status.StorePath,
		LockFilePath: status.LockFilePath,
		Provider:     status.Provider,
		Documents:    documents,
		Store: api.StoreHealth{
			Path:           status.StoreHealth.Path,
			Exists:         status.StoreHealth.Exists,
			Readable:       status.StoreHealth.Readable,
			IntegrityOK:    status.StoreHealth.IntegrityOK,
			TotalDocuments: status.StoreHealth.TotalDocuments,
			Error:          status.StoreHealth.Error,
		},
		Dependencies: dependencies,
	})
}

// handleProcess accepts either a multipart form with an "image" part or the
// raw image bytes as the request body.
func (s *apiServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	filename, image, err := readUpload(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.daemon.Documents().Process(r.Context(), filename, image)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("image")
		if err != nil {
			return "", nil, fmt.Errorf("missing image part: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, fmt.Errorf("read image part: %w", err)
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read request body: %w", err)
	}
	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		filename = "upload"
	}
	return filename, data, nil
}

func (s *apiServer) handleList(w http.ResponseWriter, r *http.Request) {
	resp, err := s.daemon.Documents().List(r.URL.Query()["state"]...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := s.daemon.Documents().Get(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.daemon.Documents().Verify(r.Context(), r.PathValue("id"), req)
	if err != nil {
		// The outcome stands in memory even when the durable save failed;
		// return it with the error status so the caller can flush later.
		if errors.Is(err, session.ErrPersistence) {
			s.writeJSON(w, http.StatusInternalServerError, resp)
			return
		}
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleReject(w http.ResponseWriter, r *http.Request) {
	var req api.RejectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.daemon.Documents().Reject(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.Documents().Flush(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"persisted": true})
}

func (s *apiServer) handleReport(w http.ResponseWriter, r *http.Request) {
	resp, err := s.daemon.Documents().Report(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleFieldAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	kind := r.PathValue("kind")
	svc := s.daemon.Documents()

	var (
		resp api.DocumentResponse
		err  error
	)
	switch action := r.PathValue("action"); action {
	case "edit":
		var req api.FieldEditRequest
		if decodeErr := decodeJSON(r, &req); decodeErr != nil {
			s.writeError(w, http.StatusBadRequest, decodeErr.Error())
			return
		}
		resp, err = svc.EditField(r.Context(), id, kind, req.Value)
	case "accept":
		resp, err = svc.AcceptField(r.Context(), id, kind)
	case "reject":
		resp, err = svc.RejectField(r.Context(), id, kind)
	default:
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown field action %q", action))
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound) || errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, api.ErrValidation),
		errors.Is(err, reconcile.ErrUnknownField),
		errors.Is(err, reconcile.ErrMissingRequired),
		errors.Is(err, session.ErrUnknownField):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidState):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
