package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/mkravets/tradesim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGetAssetsHandler(t *testing.T) {
	catalog := []models.AssetDB{
		{Symbol: "AAPL", Name: "Apple Inc.", Class: "stock", Active: true},
		{Symbol: "BTC-USD", Name: "Bitcoin", Class: "crypto", Active: true},
	}

	tests := []struct {
		name               string
		target             string
		setupMocks         func(mockLister *MockAssetLister)
		expectedStatusCode int
		expectedKey        string
	}{
		{
			name:   "active assets by default",
			target: "/api/v1/assets",
			setupMocks: func(mockLister *MockAssetLister) {
				mockLister.EXPECT().List(gomock.Any(), true).Return(catalog, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedKey:        "assets",
		},
		{
			name:   "all assets with all=true",
			target: "/api/v1/assets?all=true",
			setupMocks: func(mockLister *MockAssetLister) {
				mockLister.EXPECT().List(gomock.Any(), false).Return(catalog, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedKey:        "assets",
		},
		{
			name:   "repository error",
			target: "/api/v1/assets",
			setupMocks: func(mockLister *MockAssetLister) {
				mockLister.EXPECT().List(gomock.Any(), true).Return(nil, assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedKey:        "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockLister := NewMockAssetLister(ctrl)
			tt.setupMocks(mockLister)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()

			handler := NewGetAssetsHandler(mockLister)
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)

			var resp map[string]interface{}
			err := json.NewDecoder(rr.Body).Decode(&resp)
			assert.NoError(t, err)

			_, ok := resp[tt.expectedKey]
			assert.True(t, ok, "response should contain key %s", tt.expectedKey)
		})
	}
}
