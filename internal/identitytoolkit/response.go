// Package identitytoolkit decodes the identity backend's verifyAssertion
// response. It does no network I/O; callers hand it bytes they already hold.
package identitytoolkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/brizzai/federated-userinfo/internal/userinfo"
	"golang.org/x/oauth2"
)

// VerifyAssertionResponse mirrors the JSON body returned after a federated sign-in
type VerifyAssertionResponse struct {
	Kind             string  `json:"kind,omitempty"`
	FederatedID      string  `json:"federatedId,omitempty"`
	ProviderID       string  `json:"providerId"`
	LocalID          string  `json:"localId,omitempty"`
	Email            string  `json:"email,omitempty"`
	EmailVerified    bool    `json:"emailVerified,omitempty"`
	DisplayName      string  `json:"displayName,omitempty"`
	ScreenName       *string `json:"screenName,omitempty"`
	RawUserInfo      string  `json:"rawUserInfo,omitempty"`
	IsNewUser        bool    `json:"isNewUser,omitempty"`
	IDToken          string  `json:"idToken,omitempty"`
	RefreshToken     string  `json:"refreshToken,omitempty"`
	ExpiresIn        string  `json:"expiresIn,omitempty"`
	OAuthAccessToken string  `json:"oauthAccessToken,omitempty"`
	OAuthIDToken     string  `json:"oauthIdToken,omitempty"`
	OAuthTokenSecret string  `json:"oauthTokenSecret,omitempty"`

	profile map[string]any
}

var _ userinfo.ProviderResponse = (*VerifyAssertionResponse)(nil)

// DecodeVerifyAssertionResponse reads a response body from r
func DecodeVerifyAssertionResponse(r io.Reader) (*VerifyAssertionResponse, error) {
	var resp VerifyAssertionResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode verifyAssertion response: %w", err)
	}
	if err := resp.parseRawUserInfo(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ParseVerifyAssertionResponse is DecodeVerifyAssertionResponse for an in-memory body
func ParseVerifyAssertionResponse(data []byte) (*VerifyAssertionResponse, error) {
	return DecodeVerifyAssertionResponse(bytes.NewReader(data))
}

// rawUserInfo is itself a JSON document, the provider's profile verbatim
func (r *VerifyAssertionResponse) parseRawUserInfo() error {
	if strings.TrimSpace(r.RawUserInfo) == "" {
		r.profile = nil
		return nil
	}

	var profile map[string]any
	if err := json.Unmarshal([]byte(r.RawUserInfo), &profile); err != nil {
		return fmt.Errorf("failed to decode rawUserInfo: %w", err)
	}
	if profile == nil {
		// "null" decodes to a nil map; keep it absent rather than empty
		return nil
	}
	r.profile = profile
	return nil
}

func (r *VerifyAssertionResponse) GetProviderID() string {
	return r.ProviderID
}

// GetProfile returns the parsed rawUserInfo, or nil when none was sent
func (r *VerifyAssertionResponse) GetProfile() map[string]any {
	return r.profile
}

func (r *VerifyAssertionResponse) GetUsername() *string {
	return r.ScreenName
}

func (r *VerifyAssertionResponse) GetIsNewUser() bool {
	return r.IsNewUser
}

// OAuthToken returns the provider credential carried by the response, or nil
// when the backend did not pass one through. The provider ID token, if any,
// is available as the "id_token" extra.
func (r *VerifyAssertionResponse) OAuthToken() *oauth2.Token {
	if r.OAuthAccessToken == "" {
		return nil
	}

	// RefreshToken belongs to the identity backend session, not the provider
	token := &oauth2.Token{
		AccessToken: r.OAuthAccessToken,
		TokenType:   "Bearer",
	}

	if seconds, err := strconv.ParseInt(r.ExpiresIn, 10, 64); err == nil && seconds > 0 {
		token.Expiry = time.Now().Add(time.Duration(seconds) * time.Second)
	}

	extra := map[string]any{}
	if r.OAuthIDToken != "" {
		extra["id_token"] = r.OAuthIDToken
	}
	if r.OAuthTokenSecret != "" {
		extra["oauth_token_secret"] = r.OAuthTokenSecret
	}
	if len(extra) > 0 {
		token = token.WithExtra(extra)
	}

	return token
}
