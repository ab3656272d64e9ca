// CLAUDE:SUMMARY HTTP surface: chi routes for session lifecycle, analysis, drafts and submission.
package immo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/immotrack/immo/internal/imaging"
	"github.com/hazyhaar/immotrack/kit"
	"github.com/hazyhaar/immotrack/shield"
)

// maxUploadBytes bounds one analyze request (photos plus documents).
const maxUploadBytes = 64 << 20

// Routes mounts the service API on a chi router.
func (svc *Service) Routes(r chi.Router) {
	r.Get("/api/session", svc.handleDefaultSession)
	r.Post("/api/session", svc.handleCreateSession)
	r.Route("/api/session/{id}", func(r chi.Router) {
		r.Use(sessionCtx)
		r.Get("/", svc.handleGetSession)
		r.Post("/reset", svc.handleResetSession)
		r.Put("/record", svc.handleUpdateRecord)
		r.Post("/analyze", svc.handleAnalyze)
		r.Post("/draft", svc.handleDraft)
		r.Post("/submit", svc.handleSubmit)
	})
}

// sessionCtx tags the request context with the session being worked on,
// so per-request logging carries it.
func sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithSessionID(r.Context(), chi.URLParam(r, "id"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleDefaultSession bootstraps the SPA: the default session plus flags
// telling it whether it must ask for an API key or a webhook URL.
func (svc *Service) handleDefaultSession(w http.ResponseWriter, r *http.Request) {
	s, err := svc.GetSession(DefaultSessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*Session
		Config ConfigStatus `json:"config"`
	}{s, svc.Status()})
}

func (svc *Service) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, svc.CreateSession())
}

func (svc *Service) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, err := svc.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (svc *Service) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s, err := svc.ResetSession(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (svc *Service) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	s, err := svc.UpdateRecord(chi.URLParam(r, "id"), fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleAnalyze accepts multipart/form-data: text fields "text", "url" and
// an optional "api_key" override, file fields "images" and "documents"
// (repeatable).
func (svc *Service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	in := AnalyzeInput{
		RawText: r.FormValue("text"),
		URL:     r.FormValue("url"),
		APIKey:  r.FormValue("api_key"),
	}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			data, err := readUpload(fh)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			in.Photos = append(in.Photos, imaging.Upload{Filename: fh.Filename, Data: data})
		}
		for _, fh := range r.MultipartForm.File["documents"] {
			data, err := readUpload(fh)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			in.Documents = append(in.Documents, DocumentUpload{Filename: fh.Filename, Data: data})
		}
	}

	s, err := svc.Analyze(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (svc *Service) handleDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
			return
		}
	}
	s, err := svc.Draft(r.Context(), chi.URLParam(r, "id"), body.APIKey)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (svc *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WebhookURL string `json:"webhook_url"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
			return
		}
	}
	s, err := svc.Submit(r.Context(), chi.URLParam(r, "id"), body.WebhookURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	shield.GetLogger(ctx).Warn("request failed",
		"transport", kit.GetTransport(ctx),
		"session_id", kit.GetSessionID(ctx),
		"error", err)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, ErrMissingAPIKey):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusBadGateway, err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
