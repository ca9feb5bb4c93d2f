/*
Copyright © 2019 the Adsorb authors.
This file is part of Adsorb.

Adsorb is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Adsorb is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Adsorb.  If not, see <http://www.gnu.org/licenses/>.
*/

package adsorbutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb"
	"github.com/spatialmodel/adsorb/characterisation"
	"github.com/spatialmodel/adsorb/isoio"
	"github.com/spatialmodel/adsorb/modelling"
	"github.com/spf13/cobra"
)

// maxBody is the largest isotherm document the service accepts.
const maxBody = 8 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP service.",
	Long: `serve starts an HTTP service that analyses isotherms posted to it as JSON
documents. The endpoints are:

  POST /v1/bet       BET area
  POST /v1/langmuir  Langmuir area
  POST /v1/fit       model fit; the model query parameter names the model
  POST /v1/henry     initial Henry constant
  GET  /healthz      liveness check
  GET  /metrics      Prometheus metrics

The branch, min and max query parameters select the branch and the pressure
limits of a calculation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := Cfg.GetString("http")
		logrus.WithField("address", addr).Info("adsorb service listening")
		server := &http.Server{Addr: addr, Handler: Handler()}
		return server.ListenAndServe()
	},
	DisableAutoGenTag: true,
}

var (
	registerOnce sync.Once

	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
)

func registerMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adsorb_requests_total",
				Help: "Total analysis requests by route and status code",
			},
			[]string{"route", "code"},
		)
		requestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adsorb_request_seconds",
				Help:    "Analysis request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)
		prometheus.MustRegister(requestsTotal, requestLatency)
	})
}

// analysis calculates a result from a posted isotherm.
type analysis func(iso adsorb.Isotherm, b adsorb.Branch, lim *adsorb.Range, r *http.Request) (interface{}, error)

// Handler returns the HTTP handler of the analysis service.
func Handler() http.Handler {
	registerMetrics()
	mux := http.NewServeMux()
	mux.Handle("/v1/bet", route("bet", func(iso adsorb.Isotherm, b adsorb.Branch, lim *adsorb.Range, _ *http.Request) (interface{}, error) {
		return characterisation.AreaBET(iso, b, lim)
	}))
	mux.Handle("/v1/langmuir", route("langmuir", func(iso adsorb.Isotherm, b adsorb.Branch, lim *adsorb.Range, _ *http.Request) (interface{}, error) {
		return characterisation.AreaLangmuir(iso, b, lim)
	}))
	mux.Handle("/v1/fit", route("fit", fitModel))
	mux.Handle("/v1/henry", route("henry", func(iso adsorb.Isotherm, _ adsorb.Branch, lim *adsorb.Range, _ *http.Request) (interface{}, error) {
		k, err := characterisation.InitialHenrySlope(iso, 0, lim, nil)
		if err != nil {
			return nil, err
		}
		return &HenryResult{Method: "slope", K: k}, nil
	}))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return loggingMiddleware(mux)
}

// fitModel fits the model named by the model query parameter, or the
// best of the default models, and returns the fitted model document.
func fitModel(iso adsorb.Isotherm, b adsorb.Branch, _ *adsorb.Range, r *http.Request) (interface{}, error) {
	p, err := pointIsotherm(iso)
	if err != nil {
		return nil, badRequest{err}
	}
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	var m *adsorb.ModelIsotherm
	if name := r.URL.Query().Get("model"); name == "" || strings.EqualFold(name, "guess") {
		m, err = adsorb.GuessFromPoint(p, nil, b, modelling.FitOptions{})
	} else {
		m, err = adsorb.ModelFromPoint(p, name, b, modelling.FitOptions{})
	}
	if err != nil {
		return nil, err
	}
	return isotherm{m}, nil
}

// isotherm is a result that is itself an isotherm document.
type isotherm struct{ adsorb.Isotherm }

// badRequest marks a request that is invalid regardless of the calculation.
type badRequest struct{ error }

func route(name string, f analysis) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		code := serveAnalysis(w, r, f)
		requestsTotal.WithLabelValues(name, strconv.Itoa(code)).Inc()
		requestLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	})
}

// serveAnalysis runs f on the posted isotherm and returns the status
// code of the response.
func serveAnalysis(w http.ResponseWriter, r *http.Request, f analysis) int {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		return writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
	iso, err := isoio.ReadJSON(http.MaxBytesReader(w, r.Body, maxBody), isoio.FormatAdsorb)
	if err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	b, lim, err := requestOptions(r)
	if err != nil {
		return writeError(w, http.StatusBadRequest, err)
	}
	v, err := f(iso, b, lim, r)
	if err != nil {
		return writeError(w, statusOf(err), err)
	}
	w.Header().Set("Content-Type", "application/json")
	if m, ok := v.(isotherm); ok {
		if err := isoio.WriteJSON(w, m.Isotherm); err != nil {
			logrus.WithError(err).Warn("writing response")
		}
		return http.StatusOK
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writing response")
	}
	return http.StatusOK
}

// requestOptions parses the branch, min and max query parameters.
func requestOptions(r *http.Request) (adsorb.Branch, *adsorb.Range, error) {
	q := r.URL.Query()
	b, err := adsorb.ParseBranch(q.Get("branch"))
	if err != nil {
		return 0, nil, err
	}
	if b == adsorb.BranchAll {
		b = adsorb.Adsorption
	}
	min, max := q.Get("min"), q.Get("max")
	if min == "" && max == "" {
		return b, nil, nil
	}
	lim := adsorb.Open()
	for _, v := range []struct {
		s string
		f *float64
	}{{min, &lim.Min}, {max, &lim.Max}} {
		if v.s == "" {
			continue
		}
		if *v.f, err = strconv.ParseFloat(v.s, 64); err != nil {
			return 0, nil, fmt.Errorf("invalid limit %q: %v", v.s, err)
		}
	}
	return b, lim, nil
}

// statusOf maps calculation errors to HTTP status codes: bad input is
// the client's fault and a calculation that cannot be done on valid
// input is unprocessable.
func statusOf(err error) int {
	var e badRequest
	switch {
	case errors.As(err, &e), errors.Is(err, adsorb.ErrParameter):
		return http.StatusBadRequest
	case errors.Is(err, adsorb.ErrCalculation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, code int, err error) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	return code
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   resp.status,
			"duration": time.Since(start),
		}).Info("http request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
