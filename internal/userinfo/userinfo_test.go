package userinfo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testProviderID = "PROVIDER_ID"
	testUsername   = "User Doe"
)

func testProfile() map[string]any {
	return map[string]any{
		"email":       "user@mail.com",
		"given_name":  "User",
		"family_name": "Doe",
	}
}

// fakeResponse stands in for the identity backend's verify-assertion response
type fakeResponse struct {
	providerID string
	profile    map[string]any
	username   *string
	isNewUser  bool
}

func (r *fakeResponse) GetProviderID() string      { return r.providerID }
func (r *fakeResponse) GetProfile() map[string]any { return r.profile }
func (r *fakeResponse) GetUsername() *string       { return r.username }
func (r *fakeResponse) GetIsNewUser() bool         { return r.isNewUser }

func TestNew(t *testing.T) {
	u := New(testProviderID, true, WithProfile(testProfile()), WithUsername(testUsername))

	assert.Equal(t, testProviderID, u.ProviderID())
	if diff := cmp.Diff(testProfile(), u.Profile()); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
	username, ok := u.Username()
	assert.True(t, ok)
	assert.Equal(t, testUsername, username)
	assert.True(t, u.IsNewUser())
	assert.True(t, u.HasProfile())
}

func TestNew_OptionalFieldsAbsent(t *testing.T) {
	u := New(testProviderID, false)

	assert.Nil(t, u.Profile())
	assert.False(t, u.HasProfile())
	username, ok := u.Username()
	assert.False(t, ok)
	assert.Empty(t, username)
	assert.False(t, u.IsNewUser())
}

func TestNew_EmptyProfileIsNotAbsent(t *testing.T) {
	empty := New(testProviderID, false, WithProfile(map[string]any{}))
	absent := New(testProviderID, false, WithProfile(nil))

	assert.True(t, empty.HasProfile())
	assert.NotNil(t, empty.Profile())
	assert.Empty(t, empty.Profile())

	assert.False(t, absent.HasProfile())
	assert.Nil(t, absent.Profile())

	assert.False(t, empty.Equal(absent))
}

func TestNew_EmptyUsernameIsNotAbsent(t *testing.T) {
	u := New(testProviderID, false, WithUsername(""))
	username, ok := u.Username()
	assert.True(t, ok)
	assert.Equal(t, "", username)
	assert.False(t, u.Equal(New(testProviderID, false)))
}

func TestProfileIsolation(t *testing.T) {
	source := map[string]any{
		"email": "user@mail.com",
		"address": map[string]any{
			"city": "Springfield",
		},
		"emails": []any{"a@mail.com", "b@mail.com"},
	}
	u := New(testProviderID, false, WithProfile(source))

	// Mutating the caller's map after construction
	source["email"] = "changed@mail.com"
	source["added"] = true
	source["address"].(map[string]any)["city"] = "Shelbyville"
	source["emails"].([]any)[0] = "x@mail.com"

	want := map[string]any{
		"email": "user@mail.com",
		"address": map[string]any{
			"city": "Springfield",
		},
		"emails": []any{"a@mail.com", "b@mail.com"},
	}
	if diff := cmp.Diff(want, u.Profile()); diff != "" {
		t.Fatalf("stored profile changed with the source (-want +got):\n%s", diff)
	}

	// Mutating what the accessor returned
	got := u.Profile()
	got["email"] = "other@mail.com"
	got["address"].(map[string]any)["city"] = "Capital City"
	if diff := cmp.Diff(want, u.Profile()); diff != "" {
		t.Fatalf("stored profile changed through the accessor (-want +got):\n%s", diff)
	}
}

func TestFromProviderResponse(t *testing.T) {
	username := testUsername

	for _, isNewUser := range []bool{true, false} {
		resp := &fakeResponse{
			providerID: testProviderID,
			profile:    testProfile(),
			username:   &username,
			isNewUser:  isNewUser,
		}

		got := FromProviderResponse(resp)
		want := New(testProviderID, isNewUser, WithProfile(testProfile()), WithUsername(testUsername))

		assert.True(t, want.Equal(got), "isNewUser=%v", isNewUser)
		assert.Equal(t, isNewUser, got.IsNewUser())
		assert.Equal(t, testProviderID, got.ProviderID())
	}
}

func TestFromProviderResponse_AbsentFields(t *testing.T) {
	got := FromProviderResponse(&fakeResponse{providerID: "github.com"})

	assert.True(t, New("github.com", false).Equal(got))
	assert.False(t, got.HasProfile())
	_, ok := got.Username()
	assert.False(t, ok)
}

func TestFromProviderResponse_Nil(t *testing.T) {
	assert.Nil(t, FromProviderResponse(nil))
}

func TestFromProviderResponse_CopiesProfile(t *testing.T) {
	resp := &fakeResponse{providerID: testProviderID, profile: testProfile()}
	got := FromProviderResponse(resp)

	resp.profile["email"] = "changed@mail.com"
	assert.Equal(t, "user@mail.com", got.Profile()["email"])
}

func TestEqual(t *testing.T) {
	base := New(testProviderID, true, WithProfile(testProfile()), WithUsername(testUsername))

	tests := []struct {
		name  string
		other *AdditionalUserInfo
		want  bool
	}{
		{
			name:  "identical values",
			other: New(testProviderID, true, WithProfile(testProfile()), WithUsername(testUsername)),
			want:  true,
		},
		{
			name:  "different provider",
			other: New("google.com", true, WithProfile(testProfile()), WithUsername(testUsername)),
			want:  false,
		},
		{
			name:  "different new user flag",
			other: New(testProviderID, false, WithProfile(testProfile()), WithUsername(testUsername)),
			want:  false,
		},
		{
			name:  "missing username",
			other: New(testProviderID, true, WithProfile(testProfile())),
			want:  false,
		},
		{
			name:  "different profile",
			other: New(testProviderID, true, WithProfile(map[string]any{"email": "user@mail.com"}), WithUsername(testUsername)),
			want:  false,
		},
		{
			name:  "nil",
			other: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
		})
	}

	var none *AdditionalUserInfo
	assert.True(t, none.Equal(nil))
}

func TestMarshalLogObject_OmitsProfileValues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	u := New(testProviderID, true, WithProfile(testProfile()), WithUsername(testUsername))
	log.Info("signed in", zap.Object("user_info", u))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	logged, ok := fields["user_info"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, testProviderID, logged["provider_id"])
	assert.Equal(t, true, logged["has_username"])
	assert.EqualValues(t, 3, logged["profile_keys"])
	assert.Equal(t, true, logged["new_user"])
	assert.NotContains(t, logged, "profile")
	assert.NotContains(t, logged, "username")
}

func TestNew_ProfileNumbersCompareByValue(t *testing.T) {
	asInt := New("github.com", true, WithProfile(map[string]any{"id": 1234, "roles": []string{"admin"}}))
	asFloat := New("github.com", true, WithProfile(map[string]any{"id": 1234.0, "roles": []any{"admin"}}))

	assert.True(t, asInt.Equal(asFloat))
	assert.Equal(t, 1234.0, asInt.Profile()["id"])
}

func TestNew_UnstorableProfileKeptAsIs(t *testing.T) {
	big := int64(9007199254740993)
	u := New("github.com", true, WithProfile(map[string]any{"id": big}))

	assert.Equal(t, big, u.Profile()["id"])
}
