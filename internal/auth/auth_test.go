package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/vecgfx/internal/typeid"
)

func TestIssueAndValidate(t *testing.T) {
	s := NewService("secret")
	user := User{ID: typeid.NewUserID(), DisplayName: "Ada"}

	token, err := s.IssueToken(user, time.Hour)
	require.NoError(t, err)

	got, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, &user, got)
}

func TestIssueTokenRejectsBadUserID(t *testing.T) {
	_, err := NewService("secret").IssueToken(User{ID: "bob"}, time.Hour)
	assert.Error(t, err)
}

func TestValidateTokenFailures(t *testing.T) {
	s := NewService("secret")
	user := User{ID: typeid.NewUserID()}

	otherKey, err := NewService("other").IssueToken(user, time.Hour)
	require.NoError(t, err)

	expired := NewService("secret")
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := expired.IssueToken(user, time.Hour)
	require.NoError(t, err)

	noAlg := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": user.ID})
	unsigned, err := noAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	withoutSubject, err := noSub.SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"wrong key":  otherKey,
		"expired":    old,
		"alg none":   unsigned,
		"no subject": withoutSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGuest(t *testing.T) {
	s := NewService("secret")
	res, err := s.Guest("  ")
	require.NoError(t, err)
	assert.Equal(t, "Guest", res.User.DisplayName)
	assert.NoError(t, typeid.Validate(res.User.ID, typeid.PrefixUser))

	user, err := s.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User, *user)
}

func TestMiddleware(t *testing.T) {
	s := NewService("secret")
	res, err := s.Guest("Ada")
	require.NoError(t, err)

	handler := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserIDFromContext(r.Context())))
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"ok", "Bearer " + res.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, res.User.ID, rec.Body.String())
			}
		})
	}
}

func TestGuestHandler(t *testing.T) {
	h := NewHandler(NewService("secret"))

	rec := httptest.NewRecorder()
	h.Guest(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{"displayName":"Ada"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var res AuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Ada", res.User.DisplayName)
	assert.NotEmpty(t, res.Token)

	rec = httptest.NewRecorder()
	h.Guest(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Guest(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	h := NewHandler(NewService("secret"))

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := &User{ID: "user_x", DisplayName: "X"}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec = httptest.NewRecorder()
	h.Me(rec, req.WithContext(WithUser(req.Context(), user)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"user_x","displayName":"X"}`, rec.Body.String())
}
