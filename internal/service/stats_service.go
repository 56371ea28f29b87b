package service

import (
	"context"
	"fmt"
	"time"

	"restock-service/internal/models"
	"restock-service/internal/stats"
	"restock-service/internal/store"
	"restock-service/internal/util"

	"go.uber.org/zap"
)

// StatsService produces chart-ready spend statistics from purchase history
type StatsService struct {
	store    *store.Store
	logger   *zap.Logger
	topLimit int
}

// NewStatsService creates a new statistics service
func NewStatsService(store *store.Store, topLimit int) *StatsService {
	return &StatsService{
		store:    store,
		logger:   util.GetLogger(),
		topLimit: topLimit,
	}
}

// SpendingSeries is one chart series, labels and values aligned 1:1
type SpendingSeries struct {
	Period stats.Period `json:"period"`
	Labels []string     `json:"labels"`
	Values []float64    `json:"values"`
}

// Spending returns the spend chart for the requested granularity
func (s *StatsService) Spending(ctx context.Context, periodStr string) (*SpendingSeries, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.Spending")
	defer span.End()

	period, err := stats.ParsePeriod(periodStr)
	if err != nil {
		return nil, err
	}

	history, err := s.store.GetPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase history: %w", err)
	}

	labels, values := stats.SpendingSeries(history, period, time.Now())
	return &SpendingSeries{Period: period, Labels: labels, Values: values}, nil
}

// TopProducts returns the most frequently purchased products
func (s *StatsService) TopProducts(ctx context.Context) ([]stats.ProductCount, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.TopProducts")
	defer span.End()

	history, err := s.store.GetPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase history: %w", err)
	}
	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return stats.TopProducts(history, products, s.topLimit), nil
}

// MonthlySpend returns spend totals per calendar month, most recent first
func (s *StatsService) MonthlySpend(ctx context.Context) ([]stats.MonthlyTotal, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.MonthlySpend")
	defer span.End()

	history, err := s.store.GetPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase history: %w", err)
	}

	return stats.MonthlySpend(history), nil
}

// loadReportData gathers everything the XLSX report needs
func (s *StatsService) loadReportData(ctx context.Context) ([]stats.MonthlyTotal, []stats.ProductCount, []models.Purchase, map[string]string, error) {
	history, err := s.store.GetPurchases(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load purchase history: %w", err)
	}
	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load products: %w", err)
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	return stats.MonthlySpend(history), stats.TopProducts(history, products, s.topLimit), history, names, nil
}
