package initializers

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/config"
	"github.com/shivang-26/techCommunity-website/internals/models"
)

// StartOTPCleanup runs a background janitor that purges expired one-time
// passcodes. Verification never depends on this, it only checks expiry
// timestamps; the janitor just keeps stale rows from piling up, the same
// role the TTL index played in the storage layer before.
func StartOTPCleanup(db *gorm.DB) {
	cleanupInterval := config.GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 30, true)
	ticker := time.NewTicker(time.Duration(cleanupInterval) * time.Minute)

	go func() {
		for range ticker.C {
			// Unscoped() performs a hard delete, bypassing GORM's soft
			// delete, so expired codes are physically removed.
			result := db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&models.OTP{})
			if result.Error != nil {
				slog.Error("janitor: failed to purge expired OTPs", "error", result.Error)
				continue
			}
			if result.RowsAffected > 0 {
				slog.Info("janitor: purged expired OTPs", "count", result.RowsAffected)
			}
		}
	}()
}
