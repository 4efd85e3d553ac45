package canonical

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/errors"
	"github.com/jwalitptl/admin-records/pkg/logger"
	"github.com/jwalitptl/admin-records/pkg/metrics"
)

type Config struct {
	// Concurrency bounds the goroutines one batch may use
	Concurrency int
	MaxBatch    int
}

func DefaultConfig() Config {
	return Config{
		Concurrency: 8,
		MaxBatch:    500,
	}
}

type CanonicalService interface {
	Canonicalize(ctx context.Context, entity Entity, raw model.JSONMap) (interface{}, error)
	CanonicalizeBatch(ctx context.Context, entity Entity, raws []model.JSONMap) ([]interface{}, error)
	Serialize(ctx context.Context, entity Entity, body []byte) (model.JSONMap, error)
	ComposeProfile(ctx context.Context, raw model.JSONMap, role string) (model.RoleProfile, error)
}

type Service struct {
	config  Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(config Config, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConfig().Concurrency
	}
	if config.MaxBatch <= 0 {
		config.MaxBatch = DefaultConfig().MaxBatch
	}
	return &Service{
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Service) Config() Config {
	return s.config
}

func (s *Service) codec(entity Entity) (codec, error) {
	c, ok := codecs[entity]
	if !ok {
		return codec{}, errors.BadRequest(fmt.Sprintf("unknown entity %q", entity), nil)
	}
	return c, nil
}

func (s *Service) Canonicalize(ctx context.Context, entity Entity, raw model.JSONMap) (interface{}, error) {
	c, err := s.codec(entity)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out := s.canonicalizeOne(entity, c, raw)
	s.metrics.CanonicalizeLatency.WithLabelValues(string(entity)).Observe(time.Since(start).Seconds())
	return out, nil
}

func (s *Service) canonicalizeOne(entity Entity, c codec, raw model.JSONMap) interface{} {
	if raw == nil {
		raw = model.JSONMap{}
	}
	out, id := c.canonicalize(raw)
	s.metrics.RecordsCanonicalized.WithLabelValues(string(entity)).Inc()
	if id == "" {
		s.metrics.UnidentifiedRecords.WithLabelValues(string(entity)).Inc()
	}
	return out
}

// CanonicalizeBatch canonicalizes a page of records in parallel. The result
// has the same order as raws. A cancelled context stops scheduling and the
// context error is returned instead of a partial page.
func (s *Service) CanonicalizeBatch(ctx context.Context, entity Entity, raws []model.JSONMap) ([]interface{}, error) {
	c, err := s.codec(entity)
	if err != nil {
		return nil, err
	}
	if len(raws) > s.config.MaxBatch {
		return nil, errors.BadRequest(fmt.Sprintf("batch of %d records exceeds limit of %d", len(raws), s.config.MaxBatch), nil)
	}

	start := time.Now()
	out := make([]interface{}, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, raw := range raws {
		if gctx.Err() != nil {
			break
		}
		i, raw := i, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.canonicalizeOne(entity, c, raw)
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.metrics.BatchFailures.WithLabelValues(string(entity), "cancelled").Inc()
		s.logger.Warn("batch canonicalization abandoned",
			"entity", string(entity),
			"records", len(raws),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("canonicalize %s batch: %w", entity, err)
	}

	elapsed := time.Since(start)
	s.metrics.BatchSize.WithLabelValues(string(entity)).Observe(float64(len(raws)))
	s.metrics.CanonicalizeLatency.WithLabelValues(string(entity)).Observe(elapsed.Seconds())
	s.logger.Debug("batch canonicalized",
		"entity", string(entity),
		"records", len(raws),
		"duration_ms", elapsed.Milliseconds(),
	)
	return out, nil
}

// Serialize decodes a canonical entity from JSON and rebuilds its wire shape.
func (s *Service) Serialize(ctx context.Context, entity Entity, body []byte) (model.JSONMap, error) {
	c, err := s.codec(entity)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := c.serialize(body)
	if err != nil {
		return nil, errors.BadRequest(fmt.Sprintf("invalid canonical %s", entity), err)
	}
	s.metrics.RecordsSerialized.WithLabelValues(string(entity)).Inc()
	return out, nil
}

// ComposeProfile canonicalizes a user record into the profile for role. A
// record whose identity declares another role fails with a RoleMismatch error.
func (s *Service) ComposeProfile(ctx context.Context, raw model.JSONMap, role string) (model.RoleProfile, error) {
	if err := ctx.Err(); err != nil {
		return model.RoleProfile{}, err
	}

	target := identity.ParseRole(role)
	profile, err := identity.ParseRoleProfile(raw, target)
	if err != nil {
		if errors.IsRoleMismatch(err) {
			s.metrics.ProfileRoleMismatches.WithLabelValues(string(target)).Inc()
			s.logger.Warn("role profile rejected", "role", string(target), "error", err.Error())
		}
		return model.RoleProfile{}, err
	}
	return profile, nil
}
