package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FeatureHandler is implemented by each feature's handler package.
type FeatureHandler interface {
	Register(r chi.Router)
}

// NewRouter wires the public API surface. Feature handlers mount their own
// sub-routers with their own middleware chains; only the operational
// endpoints live here.
func NewRouter(handlers ...FeatureHandler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
