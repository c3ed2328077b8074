package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenInfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testVerifier(clientID, url string) *GoogleVerifier {
	v := NewGoogleVerifier(clientID)
	v.tokenInfoURL = url
	return v
}

func TestVerifyValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	srv := newTokenInfoServer(t, 200, fmt.Sprintf(
		`{"aud":"client-1","sub":"sub-1","email":"Person@Example.com","email_verified":"true","exp":"%d"}`, exp))

	ident, err := testVerifier("client-1", srv.URL).Verify("token")
	require.NoError(t, err)
	assert.Equal(t, "person@example.com", ident.Email)
	assert.Equal(t, "sub-1", ident.Sub)
	assert.True(t, ident.EmailVerified)
}

func TestVerifyAudienceMismatch(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	srv := newTokenInfoServer(t, 200, fmt.Sprintf(
		`{"aud":"someone-else","sub":"sub-1","email":"a@example.com","email_verified":"true","exp":"%d"}`, exp))

	_, err := testVerifier("client-1", srv.URL).Verify("token")
	assert.ErrorContains(t, err, "audience")
}

func TestVerifyExpiredToken(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Unix()
	srv := newTokenInfoServer(t, 200, fmt.Sprintf(
		`{"aud":"client-1","sub":"sub-1","email":"a@example.com","email_verified":"true","exp":"%d"}`, exp))

	_, err := testVerifier("client-1", srv.URL).Verify("token")
	assert.ErrorContains(t, err, "expired")
}

func TestVerifyRejectedByGoogle(t *testing.T) {
	srv := newTokenInfoServer(t, 400, `{"error":"invalid_token"}`)

	_, err := testVerifier("client-1", srv.URL).Verify("token")
	assert.Error(t, err)
}

func TestVerifyUnverifiedEmailFlag(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	srv := newTokenInfoServer(t, 200, fmt.Sprintf(
		`{"aud":"client-1","sub":"sub-1","email":"a@example.com","email_verified":"false","exp":"%d"}`, exp))

	ident, err := testVerifier("client-1", srv.URL).Verify("token")
	require.NoError(t, err)
	assert.False(t, ident.EmailVerified)
}

func TestVerifyWithoutClientID(t *testing.T) {
	_, err := NewGoogleVerifier("").Verify("token")
	assert.Error(t, err)
}
