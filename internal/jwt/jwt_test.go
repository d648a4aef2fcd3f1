package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndGetClaims(t *testing.T) {
	ctx := context.Background()
	j := New("test-secret", time.Minute)
	userID := uuid.New()

	token, err := j.Generate(ctx, userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.GetClaims(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	assert.NoError(t, j.Validate(ctx, token))
}

func TestGetClaims_WrongKey(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	token, err := New("secret-a", time.Minute).Generate(ctx, userID)
	assert.NoError(t, err)

	_, err = New("secret-b", time.Minute).GetClaims(ctx, token)
	assert.Error(t, err)
}

func TestGetClaims_Expired(t *testing.T) {
	ctx := context.Background()
	j := New("test-secret", -time.Minute)

	token, err := j.Generate(ctx, uuid.New())
	assert.NoError(t, err)

	_, err = j.GetClaims(ctx, token)
	assert.Error(t, err)
}

func TestGetTokenFromRequest(t *testing.T) {
	ctx := context.Background()
	j := New("test-secret", time.Minute)

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "no token", header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := j.GetTokenFromRequest(ctx, r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
