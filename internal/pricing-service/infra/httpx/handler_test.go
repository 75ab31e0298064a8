package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQuoteEndpoint(t *testing.T) {
	router := NewRouter(NewHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/pricing/quote?baseFare=100.00&currency=usd&bags=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`"baseFare":100.00`, `"tax":21.00`, `"bagFees":60.00`, `"totalFare":181.00`, `"currency":"USD"`, `"rulesVersion":"v1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s does not contain %s", body, want)
		}
	}

	var resp QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalFare.String() != "181.00" {
		t.Errorf("totalFare = %s", resp.TotalFare)
	}
}

func TestQuoteEndpointWithoutBags(t *testing.T) {
	router := NewRouter(NewHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/pricing/quote?baseFare=10&currency=EUR&bags=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"totalFare":12.10`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestQuoteEndpointValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"missing fare", "currency=USD", "baseFare is required"},
		{"bad fare", "baseFare=x&currency=USD", "baseFare must be a decimal number"},
		{"missing bags", "baseFare=1&currency=USD", "bags is required"},
		{"blank bags", "baseFare=1&currency=USD&bags=", "bags is required"},
		{"bad bags", "baseFare=1&currency=USD&bags=two", "bags must be an integer"},
		{"negative bags", "baseFare=1&currency=USD&bags=-1", "bags must be >= 0"},
		{"negative fare", "baseFare=-5&currency=USD&bags=0", "baseFare must be >= 0"},
		{"blank currency", "baseFare=1&currency=&bags=0", "currency must be a 3-letter code"},
	}

	router := NewRouter(NewHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pricing/quote?"+tt.query, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}
