package userinfo

// ProviderResponse is the slice of a verify-assertion response this package
// reads. Nil pointers and maps mean the provider did not report the field.
type ProviderResponse interface {
	GetProviderID() string
	GetProfile() map[string]any
	GetUsername() *string
	GetIsNewUser() bool
}

// FromProviderResponse copies the four fields of resp into a new
// AdditionalUserInfo without interpreting them
func FromProviderResponse(resp ProviderResponse) *AdditionalUserInfo {
	if resp == nil {
		return nil
	}

	opts := []Option{WithProfile(resp.GetProfile())}
	if username := resp.GetUsername(); username != nil {
		opts = append(opts, WithUsername(*username))
	}

	return New(resp.GetProviderID(), resp.GetIsNewUser(), opts...)
}
