package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name            string
		setupStore      func() storage.ContentStore
		expectedStatus  int
		expectedHealth  string
		expectedStore   string
		expectedContent any
	}{
		{
			name: "healthy and published",
			setupStore: func() storage.ContentStore {
				store := storage.NewMockStore()
				c := &content.Catalog{}
				_ = store.Publish(context.Background(), c, nil, storage.NewManifest(uuid.New(), c, nil, 0))
				return store
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedStore:  "healthy",
		},
		{
			name: "healthy but unpublished",
			setupStore: func() storage.ContentStore {
				return storage.NewMockStore()
			},
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStore:   "healthy",
			expectedContent: "unpublished",
		},
		{
			name: "unhealthy store",
			setupStore: func() storage.ContentStore {
				store := storage.NewMockStore()
				store.SetPingError(errors.New("connection failed"))
				return store
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedStore:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStore(), testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			var response HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("expected health status %q, got %q", tt.expectedHealth, response.Status)
			}
			if response.Components["store"] != tt.expectedStore {
				t.Errorf("expected store status %q, got %v", tt.expectedStore, response.Components["store"])
			}
			if tt.expectedContent != nil && response.Components["content"] != tt.expectedContent {
				t.Errorf("expected content %v, got %v", tt.expectedContent, response.Components["content"])
			}
			if response.Service != "climate-quest-content" {
				t.Errorf("unexpected service name %q", response.Service)
			}
		})
	}
}
