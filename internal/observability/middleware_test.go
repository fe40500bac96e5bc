package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/storefront-web/internal/requestctx"
)

func newObservedRouter(t *testing.T, register func(chi.Router)) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(TraceMiddleware())
	r.Use(InjectLoggerMiddleware(logger))
	r.Use(RequestLoggerMiddleware())
	r.Use(RecoveryMiddleware(logger))
	register(r)
	return r, logs
}

func TestRequestLoggerRecordsRouteAndStatus(t *testing.T) {
	t.Parallel()

	h, logs := newObservedRouter(t, func(r chi.Router) {
		r.Get("/cart/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			requestctx.Logger(r.Context()).Info("handler ran")
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/cart/items/7", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTeapot, rec.Code)

	handlerLogs := logs.FilterMessage("handler ran").All()
	require.Len(t, handlerLogs, 1)
	require.Equal(t, "GET", handlerLogs[0].ContextMap()["method"])
	require.Equal(t, true, handlerLogs[0].ContextMap()["htmx"])

	done := logs.FilterMessage("request completed").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	require.Equal(t, zapcore.WarnLevel, done[0].Level)
	require.EqualValues(t, http.StatusTeapot, fields["status"])
	require.Equal(t, "/cart/items/{id}", fields["route"])
	require.EqualValues(t, len("short and stout"), fields["bytes"])
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	t.Parallel()

	h, logs := newObservedRouter(t, func(r chi.Router) {
		r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("HX-Request", "true")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	require.Len(t, logs.FilterMessage("panic recovered").All(), 1)

	done := logs.FilterMessage("request completed").All()
	require.Len(t, done, 1)
	require.Equal(t, zapcore.ErrorLevel, done[0].Level)
}

func TestTraceMiddlewarePropagatesRemoteTraceID(t *testing.T) {
	t.Parallel()

	var got requestctx.TraceInfo
	h := TraceMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = requestctx.Trace(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.TraceID)
	require.True(t, got.Sampled)
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/", SanitizeRoute(""))
	require.Equal(t, "GET", SanitizeMethod("G\nE\tT"))
	require.Len(t, SanitizeSessionID("0123456789abcdefghijkl"), 12)
}
