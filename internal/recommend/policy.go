package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FingerprintSource lists company|title fingerprints of jobs the user
// has rejected since a point in time.
type FingerprintSource interface {
	NegativeFingerprints(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error)
}

// NegativeSignalPolicy suppresses jobs matching recent negative
// feedback. Signals older than the window expire, so a rejected
// company or role can resurface once the feedback goes stale.
type NegativeSignalPolicy struct {
	source FingerprintSource
	window time.Duration
	clock  func() time.Time
}

func NewNegativeSignalPolicy(source FingerprintSource, window time.Duration) *NegativeSignalPolicy {
	if window <= 0 {
		window = DefaultRetention
	}
	return &NegativeSignalPolicy{
		source: source,
		window: window,
		clock:  time.Now,
	}
}

// ExcludedFingerprints returns the set of fingerprints to drop during
// candidate retrieval.
func (p *NegativeSignalPolicy) ExcludedFingerprints(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	since := p.clock().Add(-p.window)
	prints, err := p.source.NegativeFingerprints(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load negative fingerprints: %w", err)
	}
	if len(prints) == 0 {
		return nil, nil
	}
	excluded := make(map[string]bool, len(prints))
	for _, fp := range prints {
		excluded[fp] = true
	}
	return excluded, nil
}
