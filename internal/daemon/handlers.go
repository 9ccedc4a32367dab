package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/rpc"
	"github.com/Dleifnesor/PAW/internal/version"
)

const (
	transport    = "http"
	maxBodyBytes = 1 << 20
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rpc.HealthResponse{Status: "ok", Tools: s.service.Len(), Version: version.Version})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Server.MetricsEnabled {
		http.NotFound(w, r)
		return
	}

	promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// toolsHandler lists tools, optionally narrowed by ?category= (exact) and ?q= (search).
func (s *Server) toolsHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	q := r.URL.Query().Get("q")

	var tools []registry.ToolEntry
	s.service.View(func(reg *registry.Registry) {
		switch {
		case q != "":
			tools = reg.Search(q)
		case category != "":
			tools = reg.ByCategory(category)
		default:
			tools = reg.ExportAll()
		}
	})
	if q != "" && category != "" {
		filtered := tools[:0]
		for _, t := range tools {
			if t.Category == category {
				filtered = append(filtered, t)
			}
		}
		tools = filtered
	}
	writeJSON(w, http.StatusOK, rpc.ToolsResponse{Tools: tools})
}

func (s *Server) toolHandler(w http.ResponseWriter, r *http.Request) {
	var (
		entry registry.ToolEntry
		err   error
	)
	s.service.View(func(reg *registry.Registry) {
		entry, err = reg.Get(r.PathValue("name"))
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	var categories []string
	s.service.View(func(reg *registry.Registry) {
		categories = reg.AllCategories()
	})
	writeJSON(w, http.StatusOK, rpc.CategoriesResponse{Categories: categories})
}

func (s *Server) resolveHandler(w http.ResponseWriter, r *http.Request) {
	var req rpc.ResolveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Limit < 0 {
		s.badRequest(w, "bad_limit", "limit cannot be negative")
		return
	}

	start := time.Now()
	matches := s.service.Resolve(req.Prompt, req.Limit)
	s.metrics.RecordResolve(transport, len(matches), time.Since(start))
	writeJSON(w, http.StatusOK, rpc.ResolveResponse{Matches: matches})
}

func (s *Server) expandHandler(w http.ResponseWriter, r *http.Request) {
	var req rpc.ExpandRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Tool) == "" {
		s.badRequest(w, "missing_tool", "tool is required")
		return
	}

	entry, res, err := s.service.Expand(req.Tool, req.Prompt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordExpansion(res.AllFilled)
	writeJSON(w, http.StatusOK, rpc.ExpandResponse{Tool: entry.Name, Result: res})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.badRequest(w, "bad_json", "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, reason, msg string) {
	s.metrics.RecordTransportError(transport, reason)
	writeJSON(w, http.StatusBadRequest, rpc.ErrorResponse{Error: msg})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var nf *registry.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, rpc.ErrorResponse{Error: err.Error(), Suggestions: nf.Suggestions})
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	s.metrics.RecordTransportError(transport, "internal")
	writeJSON(w, http.StatusInternalServerError, rpc.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
