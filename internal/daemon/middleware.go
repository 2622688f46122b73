package daemon

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/theirongolddev/debtfree/internal/apperr"
	"github.com/theirongolddev/debtfree/internal/auth"
)

const tracerName = "github.com/theirongolddev/debtfree/internal/daemon"

// statusRecorder captures the response status for logging and tracing.
type statusRecorder struct {
	http.ResponseWriter
	status int
	err    error
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func recorderFor(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

func (s *Service) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorderFor(w)
		defer func() {
			if p := recover(); p != nil {
				log.Printf("panic: %v\n%s", p, debug.Stack())
				if rec.status == 0 {
					writeJSON(rec, http.StatusInternalServerError, errorBody{
						Error:   string(apperr.CodeInternal),
						Message: "internal error",
					})
				}
				s.recordRequest(http.StatusInternalServerError, nil)
			}
		}()
		next.ServeHTTP(rec, r)
	})
}

func (s *Service) traced(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		rec := recorderFor(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.code()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if r.Pattern != "" {
			span.SetName(r.Pattern)
			span.SetAttributes(attribute.String("http.route", r.Pattern))
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
			if rec.err != nil {
				span.RecordError(rec.err)
			}
		}
	})
}

func (s *Service) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorderFor(w)
		next.ServeHTTP(rec, r)
		status := rec.code()
		s.recordRequest(status, rec.err)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond))
	})
}

// authed resolves the caller and stores the user id on the request context.
func (s *Service) authed(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.authenticate(r)
		if err != nil {
			writeError(w, apperr.Unauthenticated("authentication required"))
			return
		}
		h(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

func (s *Service) authenticate(r *http.Request) (string, error) {
	if s.deps.Auth == nil {
		if s.cfg.DevUser != "" {
			return s.cfg.DevUser, nil
		}
		return "", auth.ErrMissingToken
	}
	return s.deps.Auth.FromRequest(r)
}

// gated is authed plus the entitlement check.
func (s *Service) gated(h http.HandlerFunc) http.Handler {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Gate == nil {
			writeError(w, apperr.EntitlementRequired("subscription required"))
			return
		}
		if err := s.deps.Gate.Check(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
			writeError(w, err)
			return
		}
		h(w, r)
	})
}
