// Package providers turns the userinfo payloads of individual identity
// providers into provider responses with a common shape.
package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/brizzai/federated-userinfo/internal/logger"
	"go.uber.org/zap"
)

// Registry maps provider IDs to normalizers
type Registry struct {
	mu          sync.RWMutex
	normalizers map[string]Normalizer
}

// NewRegistry creates a registry holding the given normalizers
func NewRegistry(normalizers ...Normalizer) *Registry {
	r := &Registry{normalizers: make(map[string]Normalizer, len(normalizers))}
	for _, n := range normalizers {
		r.Register(n)
	}
	return r
}

// NewDefaultRegistry creates a registry with the built-in providers
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		NewGoogleNormalizer(),
		NewGitHubNormalizer(),
		NewTwitterNormalizer(),
	)
}

// Register adds n, replacing any normalizer for the same provider
func (r *Registry) Register(n Normalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalizers[n.ProviderID()] = n
}

// Lookup returns the normalizer for providerID, falling back to generic OIDC
func (r *Registry) Lookup(providerID string) Normalizer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.normalizers[providerID]; ok {
		return n
	}
	return NewOIDCNormalizer(providerID)
}

// Normalize decodes a raw userinfo payload and shapes it for providerID
func (r *Registry) Normalize(providerID string, raw []byte, isNewUser bool) (*Assertion, error) {
	var payload map[string]any
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s userinfo: %w", providerID, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("empty %s userinfo payload", providerID)
	}

	profile, username := r.Lookup(providerID).Normalize(payload)
	logger.Debug("Normalized provider userinfo",
		zap.String("provider_id", providerID),
		zap.Int("profile_keys", len(profile)),
		zap.Bool("has_username", username != nil),
	)

	return &Assertion{
		ProviderID: providerID,
		Profile:    profile,
		Username:   username,
		IsNewUser:  isNewUser,
	}, nil
}
