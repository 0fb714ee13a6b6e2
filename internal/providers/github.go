package providers

// GitHubNormalizer handles the GitHub /user object. The username is the login.
type GitHubNormalizer struct{}

func NewGitHubNormalizer() *GitHubNormalizer {
	return &GitHubNormalizer{}
}

func (n *GitHubNormalizer) ProviderID() string {
	return "github.com"
}

func (n *GitHubNormalizer) Normalize(raw map[string]any) (map[string]any, *string) {
	return shallowCopy(raw), stringClaim(raw, "login")
}
