package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	terr "github.com/matzehuels/townsquare/pkg/errors"
	"github.com/matzehuels/townsquare/pkg/pipeline"
)

// CacheHeader reports whether a layout came from the cache.
const CacheHeader = "X-Cache"

type artifactKind struct {
	format      string
	contentType string
}

var (
	svgArtifact = artifactKind{pipeline.FormatSVG, "image/svg+xml"}
	dotArtifact = artifactKind{pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"}
)

// decodeOptions reads the request body and attaches the server's runtime
// options.
func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, terr.Wrap(terr.ErrCodeInvalidInput, err, "invalid request body")
	}
	cfg := s.cfg
	opts.Config = &cfg
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	return opts, nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeLayout(w, r, opts)
}

func (s *Server) handleTableLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "table")
	opts.Engine = s.table(id)
	opts.Scope = id
	s.writeLayout(w, r, opts)
}

func (s *Server) writeLayout(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	res, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(CacheHeader, cacheStatus(hit))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleArtifact(kind artifactKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.decodeOptions(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{kind.format}

		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", kind.contentType)
		w.Header().Set(CacheHeader, cacheStatus(result.CacheInfo.LayoutHit))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[kind.format])
	}
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "table")
	if !s.dropTable(id) {
		s.writeError(w, r, terr.New(terr.ErrCodeNotFound, "table %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
