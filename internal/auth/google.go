package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenInfoURL is Google's ID-token introspection endpoint
const TokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity is the verified subset of a Google ID token
type GoogleIdentity struct {
	Email         string
	Sub           string
	EmailVerified bool
}

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint
type GoogleVerifier struct {
	clientID     string
	tokenInfoURL string
	client       *http.Client
}

// NewGoogleVerifier creates a verifier bound to the configured OAuth client ID
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:     clientID,
		tokenInfoURL: TokenInfoURL,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Verify checks the ID token's audience, expiry and email claims
func (v *GoogleVerifier) Verify(idToken string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google client id is not configured")
	}

	resp, err := v.client.Get(v.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken))
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("tokeninfo rejected token: %s", string(body))
	}

	// tokeninfo returns every claim as a string
	var info struct {
		Aud           string `json:"aud"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Exp           string `json:"exp"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parse tokeninfo response failed: %w", err)
	}

	if info.Aud != v.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err != nil || time.Now().Unix() >= exp {
		return nil, fmt.Errorf("token is expired")
	}
	if info.Email == "" || info.Sub == "" {
		return nil, fmt.Errorf("token is missing identity claims")
	}

	return &GoogleIdentity{
		Email:         strings.ToLower(info.Email),
		Sub:           info.Sub,
		EmailVerified: info.EmailVerified == "true",
	}, nil
}
