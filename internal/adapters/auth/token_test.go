package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTSessions_Issue(t *testing.T) {
	secret := "test-secret"
	sessions := NewJWTSessions(secret, 24*time.Hour)

	token, err := sessions.Issue("user-123", "admin@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*sessionClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestJWTSessions_Verify(t *testing.T) {
	sessions := NewJWTSessions("test-secret", time.Hour)
	token, err := sessions.Issue("user-123", "admin@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		verify  *JWTSessions
		wantID  string
		wantErr bool
	}{
		{name: "valid token", token: token, verify: sessions, wantID: "user-123"},
		{name: "wrong secret", token: token, verify: NewJWTSessions("other", time.Hour), wantErr: true},
		{name: "garbage", token: "not-a-token", verify: sessions, wantErr: true},
		{
			name:  "expired",
			token: token,
			verify: &JWTSessions{
				secret: []byte("test-secret"),
				expiry: time.Hour,
				now:    func() time.Time { return time.Now().Add(2 * time.Hour) },
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.verify.Verify(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
