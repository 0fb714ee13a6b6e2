package providers

// TwitterNormalizer handles the Twitter account object. The username is the screen name.
type TwitterNormalizer struct{}

func NewTwitterNormalizer() *TwitterNormalizer {
	return &TwitterNormalizer{}
}

func (n *TwitterNormalizer) ProviderID() string {
	return "twitter.com"
}

func (n *TwitterNormalizer) Normalize(raw map[string]any) (map[string]any, *string) {
	return shallowCopy(raw), stringClaim(raw, "screen_name")
}
