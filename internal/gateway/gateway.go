package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Route associa um prefixo público (ex.: /api/casino) ao serviço de destino
type Route struct {
	Prefix string
	Target string
}

func rp(log *zap.Logger, to string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", to)
	}
	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed", zap.String("upstream", u.Host), zap.String("path", r.URL.Path), zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
	}
	return proxy, nil
}

// New monta o handler do gateway: cada prefixo é removido antes de repassar
// (ex.: /api/casino/rounds -> casino-service /rounds).
func New(log *zap.Logger, routes ...Route) (http.Handler, error) {
	mux := http.NewServeMux()
	for _, rt := range routes {
		proxy, err := rp(log, rt.Target)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", rt.Prefix, err)
		}
		mux.Handle(rt.Prefix+"/", http.StripPrefix(rt.Prefix, proxy))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return withCORS(mux), nil
}

func withCORS(h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})(h)
}
