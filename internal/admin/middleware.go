package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
)

// requestIDHeader 请求 ID 头，客户端提供时沿用。
const requestIDHeader = "X-Request-Id"

func (s *server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error(r.Context(), "panic recovered",
					xlog.Err(fmt.Errorf("%v", rec)), xlog.Path(r.URL.Path))
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(xlog.WithRequestID(r.Context(), id)))
	})
}

func (s *server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		if sw.status < http.StatusBadRequest && !s.deps.LogSampler.ShouldSample(r.Context()) {
			return
		}
		s.logger.Info(r.Context(), "request",
			xlog.Method(r.Method),
			xlog.Path(r.URL.Path),
			xlog.StatusCode(sw.status),
			xlog.Duration(time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
