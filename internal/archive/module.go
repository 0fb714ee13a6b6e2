package archive

import (
	"github.com/brizzai/federated-userinfo/internal/config"
	"go.uber.org/fx"
)

// NewFromConfig builds an Archiver from the archive section of the config
func NewFromConfig(cfg *config.Config) (*Archiver, error) {
	keys := make(map[string][]byte, len(cfg.Archive.Keys))
	for id, secret := range cfg.Archive.Keys {
		keys[id] = []byte(secret)
	}

	return New(Config{
		ActiveKeyID: cfg.Archive.ActiveKeyID,
		Keys:        keys,
		Compression: cfg.Archive.Compression,
	})
}

// Module provides the archive dependencies
var Module = fx.Module("archive",
	fx.Provide(
		NewFromConfig,
	),
)
