package tasks

import (
	"context"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/logging"
)

const PruneTokensTask = "prune-expired-tokens"

// PruneExpiredTokens drops embed token records that are past their expiry.
func PruneExpiredTokens(store core.TokenStore) TaskFunc {
	return func(ctx context.Context, logger logging.InternalLogger) error {
		deleted, err := store.DeleteExpired(ctx)
		if err != nil {
			return err
		}
		logger.Info("pruned %d expired embed token records", deleted)
		return nil
	}
}
