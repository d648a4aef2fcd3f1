package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/jwt"
	"github.com/mkravets/tradesim/internal/models"
	"github.com/mkravets/tradesim/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestGetPortfolioHandler(t *testing.T) {
	accountID := uuid.New()
	validToken := "valid-token"

	portfolio := &models.PortfolioView{
		CashBalance: 9400,
		Positions: []models.PositionView{
			{
				Symbol:        "BTC-USD",
				Quantity:      0.01,
				TotalInvested: 600,
				LastPrice:     65000,
				CurrentValue:  650,
				UnrealizedPL:  50,
			},
		},
		TotalValue: 10050,
	}

	tests := []struct {
		name               string
		setupMocks         func(mockReader *MockPortfolioReader, mockTokener *MockPortfolioTokener)
		expectedStatusCode int
		expectedKey        string
	}{
		{
			name: "successful portfolio fetch",
			setupMocks: func(mockReader *MockPortfolioReader, mockTokener *MockPortfolioTokener) {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return(validToken, nil)
				mockTokener.EXPECT().GetClaims(gomock.Any(), validToken).Return(&jwt.Claims{UserID: accountID}, nil)
				mockReader.EXPECT().GetPortfolio(gomock.Any(), accountID).Return(portfolio, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedKey:        "total_value",
		},
		{
			name: "unauthorized missing token",
			setupMocks: func(mockReader *MockPortfolioReader, mockTokener *MockPortfolioTokener) {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("", http.ErrNoCookie)
			},
			expectedStatusCode: http.StatusUnauthorized,
			expectedKey:        "error",
		},
		{
			name: "account not found",
			setupMocks: func(mockReader *MockPortfolioReader, mockTokener *MockPortfolioTokener) {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return(validToken, nil)
				mockTokener.EXPECT().GetClaims(gomock.Any(), validToken).Return(&jwt.Claims{UserID: accountID}, nil)
				mockReader.EXPECT().GetPortfolio(gomock.Any(), accountID).Return(nil, services.ErrAccountNotFound)
			},
			expectedStatusCode: http.StatusNotFound,
			expectedKey:        "error",
		},
		{
			name: "internal server error",
			setupMocks: func(mockReader *MockPortfolioReader, mockTokener *MockPortfolioTokener) {
				mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return(validToken, nil)
				mockTokener.EXPECT().GetClaims(gomock.Any(), validToken).Return(&jwt.Claims{UserID: accountID}, nil)
				mockReader.EXPECT().GetPortfolio(gomock.Any(), accountID).Return(nil, assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedKey:        "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTokener := NewMockPortfolioTokener(ctrl)
			mockReader := NewMockPortfolioReader(ctrl)

			tt.setupMocks(mockReader, mockTokener)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio", nil)
			rr := httptest.NewRecorder()

			handler := NewGetPortfolioHandler(mockReader, mockTokener)
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

func TestGetPortfolioHandler_PositionPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	mockTokener := NewMockPortfolioTokener(ctrl)
	mockReader := NewMockPortfolioReader(ctrl)

	mockTokener.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("token", nil)
	mockTokener.EXPECT().GetClaims(gomock.Any(), "token").Return(&jwt.Claims{UserID: accountID}, nil)
	mockReader.EXPECT().GetPortfolio(gomock.Any(), accountID).Return(&models.PortfolioView{
		CashBalance: 10050,
		Positions:   []models.PositionView{},
		TotalValue:  10050,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio", nil)
	rr := httptest.NewRecorder()

	NewGetPortfolioHandler(mockReader, mockTokener).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.PortfolioView
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, 10050.0, resp.CashBalance)
	assert.Empty(t, resp.Positions)
	assert.Equal(t, 10050.0, resp.TotalValue)
}
