package metrics

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrUnavailable is returned (wrapped) when a source cannot produce metrics.
var ErrUnavailable = errors.New("metrics unavailable")

// ErrNoData marks the unavailable case where upstream answered but holds no
// metrics for the filters. It wraps ErrUnavailable.
var ErrNoData = fmt.Errorf("%w: no data for filters", ErrUnavailable)

// Source fetches the raw dashboard payload for a set of filters. The payload is
// returned unmodified; normalization is the caller's concern.
type Source interface {
	Fetch(ctx context.Context, f Filters) (*DashboardMetrics, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, f Filters) (*DashboardMetrics, error)

func (fn SourceFunc) Fetch(ctx context.Context, f Filters) (*DashboardMetrics, error) {
	return fn(ctx, f)
}

//go:embed sample.json
var samplePayload []byte

// StaticSource serves one fixed payload regardless of filters.
type StaticSource struct {
	payload []byte
}

// NewStaticSource returns a source backed by the embedded demo snapshot.
func NewStaticSource() *StaticSource {
	return &StaticSource{payload: samplePayload}
}

// NewStaticSourceFromJSON returns a source that serves the given payload.
func NewStaticSourceFromJSON(data []byte) (*StaticSource, error) {
	var probe DashboardMetrics
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode metrics payload: %w", err)
	}
	return &StaticSource{payload: data}, nil
}

// Fetch decodes a fresh copy on every call so callers never share state.
func (s *StaticSource) Fetch(ctx context.Context, _ Filters) (*DashboardMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var m DashboardMetrics
	if err := json.Unmarshal(s.payload, &m); err != nil {
		return nil, fmt.Errorf("%w: decode static payload: %v", ErrUnavailable, err)
	}
	return &m, nil
}

// Decode parses a metrics payload.
func Decode(data []byte) (*DashboardMetrics, error) {
	var m DashboardMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode metrics payload: %w", err)
	}
	return &m, nil
}
