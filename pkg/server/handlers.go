package server

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/matzehuels/cycler/pkg/buildinfo"
	"github.com/matzehuels/cycler/pkg/codec"
	"github.com/matzehuels/cycler/pkg/dot"
	cerrors "github.com/matzehuels/cycler/pkg/errors"
	"github.com/matzehuels/cycler/pkg/pipeline"
)

var bodyJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Response headers.
const (
	CacheHeader     = "X-Cycler-Cache"
	InputHashHeader = "X-Cycler-Input-Hash"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

var contentTypes = map[string]string{
	string(codec.FormatJSON): "application/json",
	string(codec.FormatYAML): "application/yaml",
	dot.FormatDOT:            "text/vnd.graphviz",
	dot.FormatSVG:            "image/svg+xml",
	dot.FormatPNG:            "image/png",
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

type operation func(context.Context, pipeline.Options) (*pipeline.Result, error)

func (s *Server) handleDocument(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.options(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := op(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeResult(w, res)
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Graph(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.runner.Inspect(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(CacheHeader, cacheStatus(rep.CacheHit))
	w.Header().Set(InputHashHeader, rep.InputHash)
	writeJSON(w, http.StatusOK, rep)
}

// =============================================================================
// Request and Response Helpers
// =============================================================================

// options reads the body and query string into pipeline options.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.Options{}, errBodyTooLarge{limit: tooLarge.Limit}
		}
		return pipeline.Options{}, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "read request body")
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Input:        body,
		InputFormat:  codec.Format(q.Get("in")),
		OutputFormat: codec.Format(q.Get("out")),
		GraphFormat:  q.Get("format"),
		Strict:       s.opts.Strict,
	}
	if opts.InputFormat == "" {
		opts.InputFormat = formatFromContentType(r.Header.Get("Content-Type"))
	}
	if v := q.Get("indent"); v != "" {
		if opts.Indent, err = strconv.Atoi(v); err != nil {
			return opts, cerrors.New(cerrors.ErrCodeInvalidInput, "invalid indent %q", v)
		}
	}
	for name, dst := range map[string]*bool{
		"strict":   &opts.Strict,
		"refresh":  &opts.Refresh,
		"detailed": &opts.Detailed,
	} {
		if v := q.Get(name); v != "" {
			if *dst, err = strconv.ParseBool(v); err != nil {
				return opts, cerrors.New(cerrors.ErrCodeInvalidInput, "invalid %s %q", name, v)
			}
		}
	}
	return opts, nil
}

func formatFromContentType(ct string) codec.Format {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return codec.FormatYAML
	case "application/json":
		return codec.FormatJSON
	}
	return ""
}

type errBodyTooLarge struct{ limit int64 }

func (e errBodyTooLarge) Error() string {
	return "request body exceeds " + strconv.FormatInt(e.limit, 10) + " bytes"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{RequestID: RequestID(r.Context())}
	var tooLarge errBodyTooLarge
	if errors.As(err, &tooLarge) {
		body.Code = string(cerrors.ErrCodeInvalidInput)
		body.Message = tooLarge.Error()
		writeJSON(w, http.StatusRequestEntityTooLarge, body)
		return
	}

	e := cerrors.Classify(err)
	status := cerrors.HTTPStatus(e.Code)
	body.Code = string(e.Code)
	body.Message = cerrors.UserMessage(e)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", body.RequestID, "error", err)
	} else {
		s.logger.Debug("request rejected", "id", body.RequestID, "code", e.Code, "error", err)
	}
	writeJSON(w, status, body)
}

func writeResult(w http.ResponseWriter, res *pipeline.Result) {
	h := w.Header()
	if ct, ok := contentTypes[res.Format]; ok {
		h.Set("Content-Type", ct)
	}
	h.Set(CacheHeader, cacheStatus(res.CacheHit))
	h.Set(InputHashHeader, res.InputHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := bodyJSON.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
