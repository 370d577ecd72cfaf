package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/audit"
	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
	"github.com/Ayaan2907/powerBiChat/internal/embed"
)

// EmbedService serves embed configurations through the fallback minter.
type EmbedService struct {
	minter     *embed.Fallback
	auditor    core.Auditor
	tokenStore core.TokenStore
	now        func() time.Time
}

func NewEmbedService(minter *embed.Fallback, auditor core.Auditor, tokenStore core.TokenStore) *EmbedService {
	return &EmbedService{
		minter:     minter,
		auditor:    auditor,
		tokenStore: tokenStore,
		now:        time.Now,
	}
}

// MintConfig returns a fresh embed configuration. Every failure is reported as 500.
func (s *EmbedService) MintConfig(ctx context.Context, req core.EmbedRequest) (*core.EmbedConfig, error) {
	logger := log.Ctx(ctx)
	reqID := correlation.FromContext(ctx)

	auditEntry := core.AuditEntry{
		ID:          reqID,
		Time:        s.now(),
		Action:      audit.ActionConfigMint,
		ReportID:    req.ReportID,
		WorkspaceID: req.WorkspaceID,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for config mint")
		}
	}()

	out, err := s.minter.Mint(ctx, req)
	if err != nil {
		auditEntry.Kind = core.KindOf(err)
		auditEntry.Error = err.Error()
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("generating embed config: %w", err))
	}

	cfg := out.Config
	fingerprint := core.Fingerprint(cfg.AccessToken)

	auditEntry.Success = true
	auditEntry.Strategy = out.Minter
	auditEntry.FallbackUsed = out.FallbackUsed()
	auditEntry.ReportID = cfg.ReportID
	auditEntry.WorkspaceID = cfg.WorkspaceID
	auditEntry.TokenFingerprint = fingerprint
	auditEntry.ExpiresAt = cfg.TokenExpiration

	rec := core.EmbedTokenRecord{
		CorrelationID: reqID,
		ReportID:      cfg.ReportID,
		WorkspaceID:   cfg.WorkspaceID,
		DatasetID:     cfg.DatasetID,
		Strategy:      out.Minter,
		Fingerprint:   fingerprint,
		IssuedAt:      s.now(),
		ExpiresAt:     cfg.TokenExpiration,
	}
	if err := s.tokenStore.Save(ctx, rec); err != nil {
		logger.Error().Err(err).Msg("failed to save embed token record")
	}

	logger.Info().
		Str("strategy", out.Minter).
		Bool("fallback_used", out.FallbackUsed()).
		Str("token_fingerprint", fingerprint).
		Time("expires_at", cfg.TokenExpiration).
		Msg("embed config generated")
	return cfg, nil
}

// ActiveTokens lists embed tokens that have not expired yet.
func (s *EmbedService) ActiveTokens(ctx context.Context) ([]core.EmbedTokenRecord, error) {
	return s.tokenStore.ListActive(ctx)
}
