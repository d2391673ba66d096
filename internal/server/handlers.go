package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/pipeline"
	"github.com/matzehuels/accessmap/pkg/region"
	"github.com/matzehuels/accessmap/pkg/scene"
)

// Query parameters for the two slider maxima.
const (
	ParamClinicMax   = "clinicMax"
	ParamProviderMax = "providerMax"
)

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type tooltipResponse struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

type regionResponse struct {
	atlas.RegionInfo
	Fill    string          `json:"fill"`
	Tooltip tooltipResponse `json:"tooltip"`
}

// parseThresholds reads the slider maxima from q. The map is filtered when
// either parameter is present; a missing one keeps its default.
func parseThresholds(q url.Values) (scene.Thresholds, bool, error) {
	th := scene.DefaultThresholds
	if !q.Has(ParamClinicMax) && !q.Has(ParamProviderMax) {
		return th, false, nil
	}
	var err error
	if q.Has(ParamClinicMax) {
		if th.ClinicMax, err = errors.ParseThreshold(ParamClinicMax, q.Get(ParamClinicMax)); err != nil {
			return th, false, err
		}
	}
	if q.Has(ParamProviderMax) {
		if th.ProviderMax, err = errors.ParseThreshold(ParamProviderMax, q.Get(ParamProviderMax)); err != nil {
			return th, false, err
		}
	}
	return th, true, nil
}

// requestOptions derives per-request pipeline options from the base
// options and the query string.
func (s *Server) requestOptions(r *http.Request, format string, filterable bool) (pipeline.Options, error) {
	opts := s.cfg.Options
	opts.Formats = []string{format}
	opts.Filtered = false
	if !filterable {
		return opts, nil
	}
	th, filtered, err := parseThresholds(r.URL.Query())
	if err != nil {
		return opts, err
	}
	opts.Filtered = filtered
	opts.ClinicMax = th.ClinicMax
	opts.ProviderMax = th.ProviderMax
	return opts, nil
}

// ready returns the atlas or answers 503.
func (s *Server) ready(w http.ResponseWriter) (*atlas.Atlas, bool) {
	a, err := s.state()
	if a != nil {
		return a, true
	}
	msg := "map data is still loading"
	if err != nil {
		msg = "map data failed to load: " + errors.UserMessage(err)
	}
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: errors.ErrCodeInternal, Error: msg})
	return nil, false
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options, contentType string) {
	a, ok := s.ready(w)
	if !ok {
		return
	}
	artifacts, err := s.runner.Render(r.Context(), a, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(artifacts[opts.Formats[0]]) //nolint:errcheck // client went away
}

func (s *Server) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.requestOptions(r, format, true)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.render(w, r, opts, contentType)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r, pipeline.FormatHTML, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, opts, "text/html; charset=utf-8")
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	opts, _ := s.requestOptions(r, pipeline.FormatLegend, false)
	s.render(w, r, opts, "image/svg+xml")
}

// handleRegion answers the tooltip payload for one region, addressed by
// code ("48") or by name ("Texas").
func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	a, ok := s.ready(w)
	if !ok {
		return
	}
	th, filtered, err := parseThresholds(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	raw := chi.URLParam(r, "code")
	code, ok := lookupRegion(a, raw)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeRegionNotFound, "unknown region %q", raw))
		return
	}

	info := a.Region(code)
	fill := scene.NeutralFill
	if filtered {
		fill = scene.Fill(a, code, th)
	}
	writeJSON(w, http.StatusOK, regionResponse{
		RegionInfo: info,
		Fill:       fill,
		Tooltip:    tooltipResponse{Title: info.Name, Lines: info.Lines()},
	})
}

func lookupRegion(a *atlas.Atlas, raw string) (region.Code, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if code := region.Code(raw); a.Known(code) {
		return code, true
	}
	if code, ok := a.Resolver.Code(raw); ok {
		return code, true
	}
	return "", false
}

func (s *Server) handleFills(w http.ResponseWriter, r *http.Request) {
	a, ok := s.ready(w)
	if !ok {
		return
	}
	th, filtered, err := parseThresholds(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fills := make(map[region.Code]string, len(a.Features))
	if filtered {
		fills = scene.Fills(a, th)
	} else {
		for _, f := range a.Features {
			fills[region.Code(f.ID)] = scene.NeutralFill
		}
	}
	writeJSON(w, http.StatusOK, fills)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	a, err := s.state()
	switch {
	case a != nil:
		writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not ready", Error: errors.UserMessage(err)})
	default:
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not ready", Error: "loading"})
	}
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeRegionNotFound), errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, errorResponse{Code: code, Error: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
