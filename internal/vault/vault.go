// Package vault stores AdditionalUserInfo as sealed archives keyed by user.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/brizzai/federated-userinfo/internal/archive"
	"github.com/brizzai/federated-userinfo/internal/logger"
	"github.com/brizzai/federated-userinfo/internal/store"
	"github.com/brizzai/federated-userinfo/internal/userinfo"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const tracerName = "github.com/brizzai/federated-userinfo/internal/vault"

// Service seals user info into a store and restores it
type Service struct {
	archiver userinfo.Archiver
	store    store.Store
	metrics  *Metrics
	tracer   trace.Tracer
}

type Params struct {
	fx.In

	Archiver   *archive.Archiver
	Store      store.Store
	Registerer prometheus.Registerer `optional:"true"`
}

// NewService builds a Service from injected dependencies. Without a
// registerer, metrics go to a private registry.
func NewService(p Params) (*Service, error) {
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register vault metrics: %w", err)
	}
	return New(p.Archiver, p.Store, metrics), nil
}

func New(archiver userinfo.Archiver, s store.Store, metrics *Metrics) *Service {
	return &Service{
		archiver: archiver,
		store:    s,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
	}
}

// Save seals info and stores it under key, replacing any previous archive
func (s *Service) Save(ctx context.Context, key string, info *userinfo.AdditionalUserInfo) (err error) {
	ctx, span := s.tracer.Start(ctx, "vault.Save", trace.WithAttributes(attribute.String("userinfo.key", key)))
	defer func() { endSpan(span, err) }()

	data, err := userinfo.Archive(s.archiver, info)
	if err != nil {
		s.metrics.observe(opSave, resultEncodeError)
		return fmt.Errorf("failed to archive user info: %w", err)
	}

	if err := s.store.Put(ctx, key, data); err != nil {
		s.metrics.observe(opSave, resultStoreError)
		return err
	}

	s.metrics.observe(opSave, resultOK)
	logger.Debug("Saved additional user info",
		zap.String("key", key),
		zap.Object("user_info", info),
		zap.Int("archive_bytes", len(data)),
	)
	return nil
}

// SaveResponse builds user info from a provider response and saves it
func (s *Service) SaveResponse(ctx context.Context, key string, resp userinfo.ProviderResponse) (*userinfo.AdditionalUserInfo, error) {
	info := userinfo.FromProviderResponse(resp)
	if info == nil {
		return nil, errors.New("provider response is required")
	}
	if err := s.Save(ctx, key, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Load restores the user info stored under key. It returns store.ErrNotFound
// for unknown keys and a *userinfo.DecodeError for archives that cannot be
// restored.
func (s *Service) Load(ctx context.Context, key string) (info *userinfo.AdditionalUserInfo, err error) {
	ctx, span := s.tracer.Start(ctx, "vault.Load", trace.WithAttributes(attribute.String("userinfo.key", key)))
	defer func() { endSpan(span, err) }()

	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.observe(opLoad, resultNotFound)
		} else {
			s.metrics.observe(opLoad, resultStoreError)
		}
		return nil, err
	}

	info, err = userinfo.Unarchive(s.archiver, data)
	if err != nil {
		s.metrics.observe(opLoad, resultDecodeError)
		return nil, err
	}

	s.metrics.observe(opLoad, resultOK)
	return info, nil
}

// LoadOrNone is Load for callers that only care whether user info is
// available. Any failure is logged and reported as nil.
func (s *Service) LoadOrNone(ctx context.Context, key string) *userinfo.AdditionalUserInfo {
	info, err := s.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warn("Additional user info unavailable", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return info
}

// Forget removes the archive stored under key
func (s *Service) Forget(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		s.metrics.observe(opForget, resultStoreError)
		return err
	}
	s.metrics.observe(opForget, resultOK)
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Module provides the vault dependencies
var Module = fx.Module("vault",
	fx.Provide(
		NewService,
	),
)
