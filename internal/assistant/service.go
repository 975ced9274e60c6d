package assistant

import (
	"context"

	"github.com/odyssey-erp/retail-inventory/internal/analytics"
)

// Reports is the slice of analytics.Service the assistant depends on.
type Reports interface {
	Dashboard(ctx context.Context, n int) (analytics.Dashboard, error)
}

// Service gathers assistant payloads from a single dashboard snapshot.
type Service struct {
	reports Reports
	top     int
}

// NewService constructs Service. top is the number of best sellers included.
func NewService(reports Reports, top int) *Service {
	if top <= 0 {
		top = 5
	}
	return &Service{reports: reports, top: top}
}

// Digest builds the daily digest.
func (s *Service) Digest(ctx context.Context) (DayDigest, error) {
	dash, err := s.reports.Dashboard(ctx, s.top)
	if err != nil {
		return DayDigest{}, err
	}
	return BuildDayDigest(dash), nil
}

// Context builds the grounding for question.
func (s *Service) Context(ctx context.Context, question string) (QueryContext, error) {
	if _, err := BuildQueryContext(question, nil, nil); err != nil {
		return QueryContext{}, err
	}
	dash, err := s.reports.Dashboard(ctx, s.top)
	if err != nil {
		return QueryContext{}, err
	}
	return BuildQueryContext(question, dash.Inventory, dash.TopSellers)
}
