package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brizzai/federated-userinfo/internal/archive"
	"github.com/brizzai/federated-userinfo/internal/userinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verifyAssertionBody = `{
  "kind": "identitytoolkit#VerifyAssertionResponse",
  "providerId": "github.com",
  "localId": "uid-1",
  "screenName": "octocat",
  "rawUserInfo": "{\"login\":\"octocat\",\"id\":1234,\"roles\":[\"admin\"]}",
  "isNewUser": true
}`

type cliEnv struct {
	dir        string
	configPath string
	response   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	config := `
logging:
  level: error
archive:
  active_key_id: k1
  keys:
    k1: ` + strings.Repeat("s", archive.MinKeySize) + `
store:
  driver: sqlite
  sql:
    dsn: ` + filepath.Join(dir, "userinfo.db") + `
`
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))

	response := filepath.Join(dir, "response.json")
	require.NoError(t, os.WriteFile(response, []byte(verifyAssertionBody), 0o600))

	return &cliEnv{dir: dir, configPath: configPath, response: response}
}

// run executes a fresh root command and returns what it wrote to stdout
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", e.configPath))
	err := cmd.Execute()
	return out.String(), err
}

func decodeView(t *testing.T, out string) map[string]any {
	t.Helper()
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view), "output: %s", out)
	return view
}

func TestSealThenOpenFile(t *testing.T) {
	env := newCLIEnv(t)
	sealed := filepath.Join(env.dir, "sealed.jws")

	_, err := env.run(t, "seal", "--response", env.response, "--out", sealed)
	require.NoError(t, err)
	require.FileExists(t, sealed)

	out, err := env.run(t, "open", "--in", sealed, "--format", "json")
	require.NoError(t, err)

	view := decodeView(t, out)
	assert.Equal(t, "github.com", view["providerId"])
	assert.Equal(t, "octocat", view["username"])
	assert.Equal(t, true, view["isNewUser"])
	assert.Equal(t, map[string]any{"login": "octocat", "id": 1234.0, "roles": []any{"admin"}}, view["profile"])
}

func TestSealToStdout(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "seal", "--response", env.response)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3, "stdout should hold one compact archive")
}

func TestOpenTamperedFile(t *testing.T) {
	env := newCLIEnv(t)
	sealed := filepath.Join(env.dir, "sealed.jws")

	_, err := env.run(t, "seal", "--response", env.response, "--out", sealed)
	require.NoError(t, err)

	data, err := os.ReadFile(sealed)
	require.NoError(t, err)
	parts := strings.Split(string(data), ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	payload[0] ^= 0x01
	parts[1] = base64.RawURLEncoding.EncodeToString(payload)
	require.NoError(t, os.WriteFile(sealed, []byte(strings.Join(parts, ".")), 0o600))

	out, err := env.run(t, "open", "--in", sealed)
	require.Error(t, err)
	assert.Empty(t, out)

	var decodeErr *userinfo.DecodeError
	require.True(t, errors.As(err, &decodeErr), "got %T: %v", err, err)
	assert.ErrorIs(t, err, archive.ErrIntegrity)
}

func TestSealOpenForgetByKey(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "seal", "--response", env.response, "--key", "uid-1")
	require.NoError(t, err)

	out, err := env.run(t, "open", "--key", "uid-1", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "github.com", decodeView(t, out)["providerId"])

	_, err = env.run(t, "forget", "--key", "uid-1")
	require.NoError(t, err)

	out, err = env.run(t, "open", "--key", "uid-1")
	require.NoError(t, err)
	assert.Contains(t, out, "No additional user info available for uid-1")
}

func TestOpenMissingKey(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "open", "--key", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No additional user info available for nobody")
}

func TestCommandFlagErrors(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "seal without response", args: []string{"seal"}, wantErr: "--response"},
		{name: "open without source", args: []string{"open"}, wantErr: "exactly one of --in or --key"},
		{name: "open with both sources", args: []string{"open", "--in", "x", "--key", "y"}, wantErr: "exactly one of --in or --key"},
		{name: "forget without key", args: []string{"forget"}, wantErr: "--key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
