package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brizzai/federated-userinfo/internal/userinfo"
	"gopkg.in/yaml.v3"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// readInput reads a whole file, or stdin for "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// userInfoView is the printable form of AdditionalUserInfo
type userInfoView struct {
	ProviderID string         `json:"providerId" yaml:"providerId"`
	Username   *string        `json:"username,omitempty" yaml:"username,omitempty"`
	IsNewUser  bool           `json:"isNewUser" yaml:"isNewUser"`
	Profile    map[string]any `json:"profile,omitempty" yaml:"profile,omitempty"`
}

func newUserInfoView(info *userinfo.AdditionalUserInfo) userInfoView {
	view := userInfoView{
		ProviderID: info.ProviderID(),
		IsNewUser:  info.IsNewUser(),
		Profile:    info.Profile(),
	}
	if username, ok := info.Username(); ok {
		view.Username = &username
	}
	return view
}

func render(w io.Writer, info *userinfo.AdditionalUserInfo, format string) error {
	view := newUserInfoView(info)

	switch format {
	case formatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to render yaml: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to render json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
