package providers

// OIDCNormalizer is the fallback for providers without a dedicated
// normalizer. It reads preferred_username as defined by OpenID Connect Core.
type OIDCNormalizer struct {
	providerID string
}

func NewOIDCNormalizer(providerID string) *OIDCNormalizer {
	return &OIDCNormalizer{providerID: providerID}
}

func (n *OIDCNormalizer) ProviderID() string {
	return n.providerID
}

func (n *OIDCNormalizer) Normalize(raw map[string]any) (map[string]any, *string) {
	return shallowCopy(raw), stringClaim(raw, "preferred_username")
}
