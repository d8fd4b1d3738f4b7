// Package server exposes the pixel pipeline over HTTP.
//
// Identity is taken from the X-User-ID header on every data route;
// authenticating that header is the deployment's job, typically a reverse
// proxy in front of this process. Responses to end users carry generic
// error messages while full diagnostics go to the log.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/beliefmap/pixels-go/pipeline"
	"github.com/beliefmap/pixels-go/present"
	"github.com/beliefmap/pixels-go/store"
)

const defaultProjectionScale = 5.0

// Server holds the handlers for the pixel HTTP API.
type Server struct {
	coordinator *pipeline.Coordinator
	store       store.Store
}

// New creates a server over a processing coordinator and a pixel store.
func New(coordinator *pipeline.Coordinator, s store.Store) *Server {
	return &Server{coordinator: coordinator, store: s}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/pixel-generation", s.handlePixelGeneration)
	r.Get("/api/pixels", s.handleGetPixels)
	r.Delete("/api/pixels", s.handleDeletePixels)
	r.Get("/api/pixels/projection", s.handleProjection)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePixelGeneration(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header")
		return
	}

	var batch pipeline.Batch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	batch.UserID = userID

	result, err := s.coordinator.Process(r.Context(), &batch)
	if err != nil {
		log.Printf("[SERVER] Pixel generation failed: user=%s chat=%s: %v", userID, batch.ChatID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "Pixel generation failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "done",
		"result": result,
	})
}

func (s *Server) handleGetPixels(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header")
		return
	}

	all, err := s.store.GetAll(r.Context(), userID)
	if err != nil {
		log.Printf("[SERVER] Fetch pixels failed: user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch pixels from the vector store")
		return
	}

	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleDeletePixels(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header")
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		if err := s.store.Delete(r.Context(), userID, id); err != nil {
			log.Printf("[SERVER] Delete pixel failed: user=%s id=%s: %v", userID, id, err)
			writeError(w, http.StatusInternalServerError, "Failed to delete pixel")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedId": id})
		return
	}

	count, err := s.store.DeleteAll(r.Context(), userID)
	if err != nil {
		log.Printf("[SERVER] Delete all pixels failed: user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete pixels")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedCount": count})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header")
		return
	}

	scale := defaultProjectionScale
	if raw := r.URL.Query().Get("scale"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid scale parameter")
			return
		}
		scale = parsed
	}

	var start, end time.Time
	filterTime := false
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start parameter")
			return
		}
		start = parsed
		filterTime = true
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end parameter")
			return
		}
		end = parsed
		filterTime = true
	}
	if filterTime && end.IsZero() {
		end = time.Now().UTC()
	}

	all, err := s.store.GetAll(r.Context(), userID)
	if err != nil {
		log.Printf("[SERVER] Projection fetch failed: user=%s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch pixels from the vector store")
		return
	}

	points := present.BuildPoints(all, scale)
	if filterTime {
		points = present.FilterByTimeRange(points, start, end)
	}

	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[SERVER] Encode response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
