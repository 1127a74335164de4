// Package keepalive exposes a minimal HTTP surface so the host platform's
// health checks keep the process alive.
package keepalive

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Start serves the health endpoint in the background.
func Start(addr string) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	go func() {
		log.Printf("Keep-alive server listening on %s", addr)
		if err := http.ListenAndServe(addr, r); err != nil {
			log.Printf("Keep-alive server stopped: %v", err)
		}
	}()
}
