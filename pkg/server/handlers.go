package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/treemap/pkg/buildinfo"
	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/errors"
	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Request is the body of the layout and render endpoints.
type Request struct {
	Tree    map[string]any   `json:"tree"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is returned by POST /v1/layout.
type LayoutResponse struct {
	ID     string      `json:"id"`
	Cached bool        `json:"cached"`
	Layout tmio.Layout `json:"layout"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	t, opts, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := opts.ValidateForLayout(); err != nil {
		s.writeError(w, r, err)
		return
	}
	laid, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), t, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := uuid.NewString()
	meta := opts.LayoutMeta()
	meta["id"] = id
	data, err := tmio.MarshalLayout(laid, meta)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	if err := s.runner.Cache.Set(r.Context(), s.runner.Keyer.StoredKey(id), data, cache.TTLStored); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store layout"))
		return
	}

	w.Header().Set("Location", "/v1/layouts/"+id)
	writeJSON(w, http.StatusCreated, LayoutResponse{ID: id, Cached: hit, Layout: tmio.NewLayout(laid, meta)})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, opts, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), t, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, result.Artifacts[format], result.CacheInfo.RenderHit)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	data, err := s.loadStored(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRenderStored(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.loadStored(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	laid, _, err := tmio.UnmarshalLayout(data)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "decode stored layout"))
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Formats: []string{format},
		VizType: q.Get("viz_type"),
		Style:   q.Get("style"),
		Palette: q.Get("palette"),
		Logger:  s.logger,
	}
	opts.Labels, _ = strconv.ParseBool(q.Get("labels"))
	opts.Legend, _ = strconv.ParseBool(q.Get("legend"))
	opts.Interactive, _ = strconv.ParseBool(q.Get("interactive"))
	opts.Detailed, _ = strconv.ParseBool(q.Get("detailed"))
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "scale"))
			return
		}
		opts.Scale = scale
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), laid, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, artifacts[format], hit)
}

func (s *Server) loadStored(r *http.Request) ([]byte, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid layout id %q", id)
	}
	data, ok, err := s.runner.Cache.Get(r.Context(), s.runner.Keyer.StoredKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load layout")
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "layout %s not found", id)
	}
	return data, nil
}

// decodeRequest reads the request body and builds the input tree.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*treemap.Tree, pipeline.Options, error) {
	// Keys the request leaves out keep their defaults; an explicit
	// "data": "" still selects the whole object as payload.
	req := Request{Options: pipeline.Options{Keys: tmio.DefaultKeys()}}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	if req.Tree == nil {
		return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "tree is required")
	}

	t, err := tmio.Decode(req.Tree, req.Options.Keys)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	opts := req.Options
	opts.Refresh = false
	opts.Logger = s.logger
	return t, opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestIDFromContext(r.Context()), "error", err)
	}
	writeJSON(w, status, errorResponse{Error: message(err), Code: errors.GetCode(err)})
}

// message is the user message of err followed by its cause, if any.
func message(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errors.UserMessage(err)
}

func statusOf(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeArtifact(w http.ResponseWriter, format string, data []byte, cached bool) {
	w.Header().Set("Content-Type", render.ContentType(format))
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
