package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/evsynth/pkg/buildinfo"
	"github.com/matzehuels/evsynth/pkg/catalog"
	"github.com/matzehuels/evsynth/pkg/core/kernel"
	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/pipeline"
	"github.com/matzehuels/evsynth/pkg/sink"
)

const (
	headerRunID = "X-Run-ID"
	headerCache = "X-Cache"
)

type generateResponse struct {
	ID        string            `json:"id"`
	Cached    bool              `json:"cached"`
	Manifest  sink.Manifest     `json:"manifest"`
	Artifacts map[string][]byte `json:"artifacts"`
}

type kernelResponse struct {
	Size    int         `json:"size"`
	Sigma   float64     `json:"sigma"`
	Sum     float64     `json:"sum"`
	Weights [][]float64 `json:"weights"`
}

type runsResponse struct {
	Runs []catalog.Run `json:"runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// checkLimits rejects requests whose cost exceeds the server caps. Products
// are compared by division so oversized factors cannot overflow.
func (s *Server) checkLimits(opts pipeline.Options) error {
	if opts.Width > 0 && opts.Height > 0 && opts.Width > s.maxPixels/opts.Height {
		return errors.New(errors.ErrCodeInvalidParameter,
			"canvas %dx%d exceeds the %d pixel limit", opts.Width, opts.Height, s.maxPixels)
	}
	if err := s.checkKernelRadius(opts.KernelRadius); err != nil {
		return err
	}
	if opts.Policy == pipeline.PolicyPack {
		if opts.Beads > s.maxPoints {
			return errors.New(errors.ErrCodeInvalidParameter,
				"%d beads exceed the %d point limit", opts.Beads, s.maxPoints)
		}
		return nil
	}
	if opts.Parents > 0 && opts.ClusterMax > 0 && opts.ClusterMax > s.maxPoints/opts.Parents {
		return errors.New(errors.ErrCodeInvalidParameter,
			"%d parents with up to %d children exceed the %d point limit",
			opts.Parents, opts.ClusterMax, s.maxPoints)
	}
	return nil
}

func (s *Server) checkKernelRadius(radius int) error {
	if radius > s.maxKernelRadius {
		return errors.New(errors.ErrCodeInvalidParameter,
			"kernel radius %d exceeds the limit of %d", radius, s.maxKernelRadius)
	}
	return nil
}

// run checks the request limits, executes the pipeline and records the run.
func (s *Server) run(r *http.Request, opts pipeline.Options) (*pipeline.Result, error) {
	if err := s.checkLimits(opts); err != nil {
		return nil, err
	}

	logger := s.requestLogger(r)
	opts.Logger = logger
	runner := pipeline.NewRunner(s.cache, keyerFrom(r.Context()), logger)
	res, err := runner.Execute(r.Context(), opts)
	if err != nil {
		return nil, err
	}

	if s.catalog != nil && res.Manifest.ID != "" {
		if err := s.catalog.Record(r.Context(), catalog.FromManifest(res.Manifest)); err != nil {
			logger.Warn("catalogue write failed", "run", res.ID, "err", err)
		}
	}
	return res, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.DefaultOptions()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
		return
	}

	res, err := s.run(r, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		ID:        res.ID,
		Cached:    res.CacheInfo.ExportHit,
		Manifest:  res.Manifest,
		Artifacts: res.Artifacts,
	})
}

// handleArtifact serves a single format built from query parameters.
func (s *Server) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := optionsFromQuery(r.URL.Query())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}

		res, err := s.run(r, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		cacheStatus := "miss"
		if res.CacheInfo.ExportHit {
			cacheStatus = "hit"
		}
		data := res.Artifacts[format]
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set(headerRunID, res.ID)
		w.Header().Set(headerCache, cacheStatus)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (s *Server) handleKernel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	radius, sigma := pipeline.DefaultKernelRadius, pipeline.DefaultPSFSigma
	if v := q.Get("radius"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidParameter, err, "invalid radius %q", v))
			return
		}
		radius = n
	}
	if v := q.Get("sigma"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidParameter, err, "invalid sigma %q", v))
			return
		}
		sigma = f
	}
	if err := s.checkKernelRadius(radius); err != nil {
		s.writeError(w, r, err)
		return
	}

	patch, err := kernel.Preview(radius, sigma)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, kernelResponse{
		Size:    patch.Size,
		Sigma:   patch.Sigma,
		Sum:     patch.Sum(),
		Weights: patch.Rows(),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "run catalogue is disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidParameter, err, "invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.catalog.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []catalog.Run{}
	}
	writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "run catalogue is disabled"))
		return
	}
	run, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
