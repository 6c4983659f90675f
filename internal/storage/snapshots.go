package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const snapshotRoot = "reports"

type objectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	URL(ctx context.Context, key string) (string, error)
}

type Snapshot struct {
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Date string `json:"date"`
	// GeneratedAt is only known for a snapshot just archived.
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
}

// Snapshots archives rendered reports as
// reports/<merchantId>/<yyyy-mm-dd>/<uuid>.json.
type Snapshots struct {
	store objectStore
	now   func() time.Time
	newID func() string
}

func NewSnapshots(store objectStore) *Snapshots {
	return &Snapshots{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Snapshots) Archive(ctx context.Context, merchantID int64, body []byte) (Snapshot, error) {
	generatedAt := s.now().UTC()
	date := generatedAt.Format("2006-01-02")
	key := path.Join(merchantPrefix(merchantID), date, s.newID()+".json")

	if err := s.store.PutObject(ctx, key, body, "application/json", "private, max-age=0, no-store"); err != nil {
		return Snapshot{}, fmt.Errorf("put snapshot: %w", err)
	}
	url, err := s.store.URL(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot url: %w", err)
	}
	return Snapshot{Key: key, URL: url, Date: date, GeneratedAt: &generatedAt}, nil
}

// List returns the merchant's snapshots, newest date first.
func (s *Snapshots) List(ctx context.Context, merchantID int64) ([]Snapshot, error) {
	prefix := merchantPrefix(merchantID) + "/"
	keys, err := s.store.ListKeys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	out := make([]Snapshot, 0, len(keys))
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix)
		date, file, ok := strings.Cut(rest, "/")
		if !ok || !strings.HasSuffix(file, ".json") {
			continue
		}
		out = append(out, Snapshot{Key: key, Date: date})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func merchantPrefix(merchantID int64) string {
	return snapshotRoot + "/" + strconv.FormatInt(merchantID, 10)
}
