package app

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const requestIdHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {

	// Tag every request with an id and log its outcome
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestId := req.Header.Get(requestIdHeader)
			if requestId == "" {
				requestId = uuid.NewString()
			}
			w.Header().Set(requestIdHeader, requestId)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)

			log.WithFields(log.Fields{
				"request_id": requestId,
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start),
			}).Debug("request handled")
		})
	})
}
