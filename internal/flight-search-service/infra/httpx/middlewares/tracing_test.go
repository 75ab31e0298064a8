package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/flight-services/internal/pkg/interceptors/constants"
)

func TestAttachTracingMetadata(t *testing.T) {
	var (
		ctxID string
		mdID  []string
	)
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID, _ = r.Context().Value(constants.ContextKeyRequestID).(string)
		if md, ok := metadata.FromOutgoingContext(r.Context()); ok {
			mdID = md.Get(constants.HeaderXRequestId)
		}
	})

	h := middleware.RequestID(AttachTracingMetadata(next))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if ctxID != "abc-123" {
		t.Errorf("context request id = %q", ctxID)
	}
	if len(mdID) != 1 || mdID[0] != "abc-123" {
		t.Errorf("outgoing metadata = %v", mdID)
	}
	if got := rec.Header().Get(middleware.RequestIDHeader); got != "abc-123" {
		t.Errorf("response header = %q", got)
	}
}
