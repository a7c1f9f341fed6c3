// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/meshly/stakemesh/api/stakingapi"
	"github.com/meshly/stakemesh/metrics"
	"github.com/meshly/stakemesh/staking"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins string
	EnableMetrics  bool
}

// New assembles the REST handler serving the staking views.
func New(eng *staking.Staking, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, origin := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(origin))
	}

	router := mux.NewRouter()
	stakingapi.New(eng).Mount(router, "/staking")
	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	return metricsHandler(handler)
}
