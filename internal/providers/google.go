package providers

// GoogleNormalizer handles OpenID Connect claims from accounts.google.com.
// Google reports no username.
type GoogleNormalizer struct{}

func NewGoogleNormalizer() *GoogleNormalizer {
	return &GoogleNormalizer{}
}

func (n *GoogleNormalizer) ProviderID() string {
	return "google.com"
}

func (n *GoogleNormalizer) Normalize(raw map[string]any) (map[string]any, *string) {
	profile := shallowCopy(raw)

	// Older tokeninfo payloads send email_verified as a string
	if v, ok := profile["email_verified"].(string); ok {
		profile["email_verified"] = v == "true"
	}

	return profile, nil
}
