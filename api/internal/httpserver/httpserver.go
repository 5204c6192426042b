package httpserver

import (
	"log"
	"net/http"
)

// RegisterHealthz adds /healthz to the default mux. check may be nil.
func RegisterHealthz(check func(r *http.Request) error) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if check != nil {
			if err := check(r); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// StartHTTP serves the default mux, which also carries the telegram webhook.
func StartHTTP(addr string) error {
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
