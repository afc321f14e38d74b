package usecase

import (
	"context"
	"fmt"

	"adsync/internal/domain"
	"adsync/pkg/logger"
)

// ResultService is the dashboard's read path over the cached sync result.
type ResultService struct {
	results domain.ResultRepository
	logger  *logger.Logger
}

func NewResultService(results domain.ResultRepository, logger *logger.Logger) *ResultService {
	return &ResultService{results: results, logger: logger}
}

// LastResult returns the most recent completed sync, or nil when none has
// finished since the process started.
func (s *ResultService) LastResult(ctx context.Context) (*domain.SyncResult, error) {
	result, err := s.results.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached sync result: %w", err)
	}
	return result, nil
}

// LastSummary returns a compact view of the latest run for list pages that
// do not need the full row payload.
func (s *ResultService) LastSummary(ctx context.Context) (map[string]any, error) {
	result, err := s.LastResult(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Summary == nil {
		return nil, nil
	}

	sum := result.Summary
	return map[string]any{
		"period": map[string]any{
			"from": sum.DateStart,
			"to":   sum.DateEnd,
		},
		"totals": map[string]any{
			"spend":   sum.Spend,
			"revenue": sum.Revenue,
			"acos":    sum.ACOS,
			"roas":    sum.ROAS,
		},
		"counts": map[string]any{
			"rows":              sum.RowsTransformed,
			"campaigns":         sum.CampaignCount,
			"skus":              sum.SkuCount,
			"reports_completed": sum.ReportsCompleted,
			"reports_failed":    sum.ReportsFailed,
		},
	}, nil
}
