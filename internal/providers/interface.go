package providers

import "github.com/brizzai/federated-userinfo/internal/userinfo"

// Normalizer reshapes one provider's raw userinfo payload into a profile and
// the username the provider reports, if any
type Normalizer interface {
	// ProviderID returns the provider this normalizer handles, e.g. "github.com"
	ProviderID() string

	// Normalize must not keep references to raw
	Normalize(raw map[string]any) (profile map[string]any, username *string)
}

// Assertion is a provider response assembled from a raw userinfo payload
type Assertion struct {
	ProviderID string
	Profile    map[string]any
	Username   *string
	IsNewUser  bool
}

var _ userinfo.ProviderResponse = (*Assertion)(nil)

func (a *Assertion) GetProviderID() string      { return a.ProviderID }
func (a *Assertion) GetProfile() map[string]any { return a.Profile }
func (a *Assertion) GetUsername() *string       { return a.Username }
func (a *Assertion) GetIsNewUser() bool         { return a.IsNewUser }

func stringClaim(raw map[string]any, key string) *string {
	if v, ok := raw[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func shallowCopy(raw map[string]any) map[string]any {
	profile := make(map[string]any, len(raw))
	for k, v := range raw {
		profile[k] = v
	}
	return profile
}
