// Package userinfo models the supplementary profile a federated identity
// provider returns during sign-in, together with whether that sign-in
// created a new account.
package userinfo

import (
	"reflect"

	"github.com/brizzai/federated-userinfo/internal/archive"
	"github.com/mohae/deepcopy"
	"go.uber.org/zap/zapcore"
)

// AdditionalUserInfo is immutable once built. Profile data is copied on the
// way in and on the way out, so it can be shared freely across goroutines.
type AdditionalUserInfo struct {
	providerID  string
	profile     map[string]any
	username    string
	hasUsername bool
	isNewUser   bool
}

// Option sets an optional field during construction
type Option func(*AdditionalUserInfo)

// WithProfile attaches the provider profile. A nil map leaves the profile
// absent; an empty map records an empty profile.
func WithProfile(profile map[string]any) Option {
	return func(u *AdditionalUserInfo) {
		u.profile = copyProfile(profile)
	}
}

// WithUsername attaches the provider-reported username
func WithUsername(username string) Option {
	return func(u *AdditionalUserInfo) {
		u.username = username
		u.hasUsername = true
	}
}

// New builds an AdditionalUserInfo. It performs no validation and cannot fail.
func New(providerID string, isNewUser bool, opts ...Option) *AdditionalUserInfo {
	u := &AdditionalUserInfo{
		providerID: providerID,
		isNewUser:  isNewUser,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ProviderID returns the identity provider, e.g. "google.com"
func (u *AdditionalUserInfo) ProviderID() string {
	return u.providerID
}

// Profile returns a copy of the provider profile, or nil when the provider sent none.
// Numbers come back as float64, slices as []any and string-keyed maps as
// map[string]any, whatever Go types were passed to WithProfile.
func (u *AdditionalUserInfo) Profile() map[string]any {
	return copyProfile(u.profile)
}

// HasProfile reports whether a profile was supplied, even an empty one
func (u *AdditionalUserInfo) HasProfile() bool {
	return u.profile != nil
}

// Username returns the provider-reported username and whether there was one
func (u *AdditionalUserInfo) Username() (string, bool) {
	return u.username, u.hasUsername
}

// IsNewUser reports whether the sign-in created a new account
func (u *AdditionalUserInfo) IsNewUser() bool {
	return u.isNewUser
}

// Equal compares all four fields by value. An absent profile is not equal to an empty one.
func (u *AdditionalUserInfo) Equal(other *AdditionalUserInfo) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.providerID == other.providerID &&
		u.username == other.username &&
		u.hasUsername == other.hasUsername &&
		u.isNewUser == other.isNewUser &&
		reflect.DeepEqual(u.profile, other.profile)
}

// MarshalLogObject implements zapcore.ObjectMarshaler. Profile values are
// personal data and are never logged, only the number of keys.
func (u *AdditionalUserInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("provider_id", u.providerID)
	enc.AddBool("has_username", u.hasUsername)
	enc.AddBool("has_profile", u.profile != nil)
	enc.AddInt("profile_keys", len(u.profile))
	enc.AddBool("new_user", u.isNewUser)
	return nil
}

// copyProfile returns an independent copy of profile in archive form, so a
// profile compares equal to its restored archive. Profiles holding values an
// archive cannot store are deep-copied as they are and fail at encode time.
func copyProfile(profile map[string]any) map[string]any {
	if profile == nil {
		return nil
	}
	if plain, err := archive.PlainObject(profile); err == nil {
		return plain
	}
	return deepcopy.Copy(profile).(map[string]any)
}
