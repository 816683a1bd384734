package cart

import (
	"context"
	"strings"

	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"go.uber.org/zap"
)

// BadgePolicy decides what the nav badge does when the count cannot be loaded.
type BadgePolicy string

const (
	// BadgeSilent logs the failure and shows an empty cart.
	BadgeSilent BadgePolicy = "silent"
	// BadgeSurface passes the failure on so the badge can flag it.
	BadgeSurface BadgePolicy = "surface"
)

func ParseBadgePolicy(s string) BadgePolicy {
	if BadgePolicy(strings.ToLower(strings.TrimSpace(s))) == BadgeSurface {
		return BadgeSurface
	}
	return BadgeSilent
}

// Resolve applies the policy to the outcome of a count.
func (p BadgePolicy) Resolve(ctx context.Context, count int, err error) (int, error) {
	if err == nil {
		return count, nil
	}
	if p == BadgeSurface {
		return 0, err
	}
	logger.Warn(ctx, "Cart badge count failed", zap.Error(err))
	return 0, nil
}
