package host

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/predict"
	"github.com/anams/page-server/pkg/registry"
	"github.com/anams/page-server/pkg/render"
)

// jsonError writes a JSON error response
func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": message,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleRoute serves the fixed route aliases. Any other path gets a
// route-not-found fragment without touching the backend.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := s.routes[normalizePath(r.URL.Path)]
	if !ok {
		s.log.Info("Not found", "path", r.URL.Path)
		var buf bytes.Buffer
		if err := s.renderer.RouteNotFound(&buf, r.URL.Path); err != nil {
			s.log.Error("Template execution failed", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write(buf.Bytes())
		return
	}
	s.writeDocument(w, s.resolver.Resolve(r.Context(), id))
}

func (s *Server) writeDocument(w http.ResponseWriter, res document.Resolved) {
	var buf bytes.Buffer
	if err := s.renderer.Document(&buf, res); err != nil {
		s.log.Error("Template execution failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(render.StatusCode(res))
	w.Write(buf.Bytes())
}

// handlePages renders the sidebar layout. Without ?doc= the first listed
// document is selected; a doc the registry does not list renders NotFound.
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.List(r.Context())
	page := render.Page{Title: s.title, Entries: entries}
	status := http.StatusOK

	if len(entries) == 0 {
		s.log.Warn("Document list is empty", "registry", s.registry.Mode())
	} else {
		id := document.ID(r.URL.Query().Get("doc"))
		if id == "" {
			id = entries[0].ID
		}
		page.Selected = id

		var res document.Resolved
		if _, listed := registry.Lookup(entries, id); listed {
			res = s.resolver.Resolve(r.Context(), id)
		} else {
			res = document.Unlisted(id, s.resolver.Location(id))
		}
		body, err := s.renderer.Fragment(res)
		if err != nil {
			s.log.Error("Template execution failed", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		page.Body = body
		status = render.StatusCode(res)
	}

	var buf bytes.Buffer
	if err := s.renderer.Layout(&buf, page); err != nil {
		s.log.Error("Template execution failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.List(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"registry":  s.registry.Mode(),
		"documents": entries,
	})
}

// DocumentResponse is the JSON form of a resolution
type DocumentResponse struct {
	ID       document.ID      `json:"id"`
	Location string           `json:"location"`
	OK       bool             `json:"ok"`
	Reason   *document.Reason `json:"reason,omitempty"`
	Detail   string           `json:"detail,omitempty"`
	Content  string           `json:"content,omitempty"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := document.ID(r.PathValue("id"))
	res := s.resolver.Resolve(r.Context(), id)

	resp := DocumentResponse{
		ID:       res.ID,
		Location: res.Location,
		OK:       res.OK(),
	}
	if res.OK() {
		if r.URL.Query().Get("meta") != "1" {
			resp.Content = res.Content
		}
	} else {
		resp.Reason = &res.Failure.Reason
		resp.Detail = res.Failure.Detail
	}
	writeJSON(w, render.StatusCode(res), resp)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.predictor == nil {
		jsonError(w, "predictions are disabled", http.StatusServiceUnavailable)
		return
	}

	var in predict.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&in); err != nil {
		s.log.Error("Invalid request body", "error", err)
		jsonError(w, "invalid input: "+err.Error(), http.StatusBadRequest)
		return
	}

	results := s.predictor.Predict(r.Context(), in)
	writeJSON(w, http.StatusOK, map[string]any{
		"input":       in,
		"predictions": results,
	})
}
