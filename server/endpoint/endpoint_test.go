package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/edlflash/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	return rr
}

func TestHealthStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status observability.HealthStatus
		want   int
	}{
		{"up", observability.HealthStatusUp, http.StatusOK},
		{"degraded", observability.HealthStatusDegraded, http.StatusOK},
		{"down", observability.HealthStatusDown, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker := func(context.Context) *observability.ServiceHealth {
				sh := observability.NewServiceHealth("edlflash", "1.0.0")
				sh.AddComponent(observability.Health{Name: "device", Status: tc.status})
				return sh
			}
			rr := serve(Health(checker))
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}

			var body struct {
				Status     string                 `json:"status"`
				Service    string                 `json:"service"`
				Components []observability.Health `json:"components"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Status != string(tc.status) || body.Service != "edlflash" {
				t.Errorf("body = %+v", body)
			}
			if len(body.Components) != 1 || body.Components[0].Name != "device" {
				t.Errorf("components = %+v", body.Components)
			}
		})
	}
}

func TestHealthWithoutChecker(t *testing.T) {
	if rr := serve(Health(nil)); rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestVersion(t *testing.T) {
	rr := serve(Version())
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Build struct {
			Version string `json:"version"`
		} `json:"build"`
		Uptime string `json:"uptime"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Build.Version == "" || body.Uptime == "" {
		t.Errorf("body = %+v", body)
	}
}
