// Package handlers exposes tier lookup, stat sheet extraction and battles over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/vsbattles/versus/internal/extract"
	"github.com/vsbattles/versus/internal/storage"
	"github.com/vsbattles/versus/internal/tier"
)

type Handler struct {
	store     *storage.Store
	extractor *extract.Extractor
	validate  *validator.Validate
}

func New(store *storage.Store, extractor *extract.Extractor) *Handler {
	h := &Handler{
		store:     store,
		extractor: extractor,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	h.validate.RegisterTagNameFunc(jsonFieldName)
	_ = h.validate.RegisterValidation("stat", h.validateStat)
	return h
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.HandleStats)
		r.Post("/scan", h.HandleScan)

		r.Get("/characters", h.HandleListCharacters)
		r.Post("/characters", h.HandleCreateCharacter)
		r.Get("/characters/{id}", h.HandleGetCharacter)
		r.Delete("/characters/{id}", h.HandleDeleteCharacter)

		r.Get("/battles", h.HandleListBattles)
		r.Post("/battles", h.HandleCreateBattle)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("Request handled", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSON(w, code, map[string]string{"error": message})
}

// decode reads a JSON request body into dest and validates it. On failure the error
// response has already been written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.writeError(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
			return false
		}
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = formatValidationError(fe)
		}
		h.writeError(w, strings.Join(msgs, "; "), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) validateStat(fl validator.FieldLevel) bool {
	return h.extractor.Tiers().HasStat(fl.Field().String())
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "uuid":
		return field + " must be a valid UUID"
	case "stat":
		return fmt.Sprintf("stat %q is not configured", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	if errors.Is(err, tier.ErrTierNotFound) || errors.Is(err, tier.ErrUnknownStat) {
		h.writeError(w, "Stored character no longer matches tier config: "+err.Error(), http.StatusConflict)
		return
	}
	h.writeError(w, err.Error(), http.StatusInternalServerError)
}
