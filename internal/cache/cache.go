package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store caches rendered report payloads per merchant.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidateMerchant drops the merchant's entries, limited to the given
	// key prefixes when any are passed.
	InvalidateMerchant(ctx context.Context, merchantID int64, prefixes ...string) error
}

// Key joins prefix, merchant and parts with "|".
func Key(prefix string, merchantID int64, parts ...string) string {
	segments := make([]string, 0, 2+len(parts))
	segments = append(segments, prefix, fmt.Sprint(merchantID))
	segments = append(segments, parts...)
	return strings.Join(segments, "|")
}

// Bucket truncates now to the cache bucket so keys roll over on their own.
func Bucket(now time.Time, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return now.Truncate(ttl).Format(time.RFC3339)
}

func belongsTo(key string, merchantID int64, prefixes []string) bool {
	merchantKey := fmt.Sprint(merchantID)
	if len(prefixes) == 0 {
		parts := strings.SplitN(key, "|", 3)
		return len(parts) >= 2 && parts[1] == merchantKey
	}
	for _, prefix := range prefixes {
		prefixKey := prefix + "|" + merchantKey
		if strings.HasPrefix(key, prefixKey+"|") || key == prefixKey {
			return true
		}
	}
	return false
}
