package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/me/kickstart/pkg/model"
)

// SaveSummary persists the run summary under the well-known key.
func SaveSummary(ctx context.Context, store Store, summary *model.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	return store.Set(ctx, SummaryKey, data)
}

// LoadSummary reads the previous run's summary, or (nil, nil) when no run
// has been persisted yet.
func LoadSummary(ctx context.Context, store Store) (*model.RunSummary, error) {
	data, err := store.Get(ctx, SummaryKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal run summary: %w", err)
	}
	return &summary, nil
}
