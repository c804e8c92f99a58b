package api

import (
	"context"
	"net/url"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// DashboardService wraps the /dashboard endpoints.
type DashboardService struct {
	client *Client
}

// NewDashboardService creates the service on top of the shared client.
func NewDashboardService(c *Client) *DashboardService {
	return &DashboardService{client: c}
}

// Resumo fetches the KPI block and chart series for a period.
func (s *DashboardService) Resumo(ctx context.Context, periodo model.PeriodoFilter) (model.DashboardOverview, error) {
	query := url.Values{}
	if periodo.Inicio != "" {
		query.Set("inicio", periodo.Inicio)
	}
	if periodo.Fim != "" {
		query.Set("fim", periodo.Fim)
	}

	var out model.DashboardOverview
	if err := s.client.Get(ctx, "/dashboard/resumo", query, &out); err != nil {
		return model.DashboardOverview{}, err
	}
	return out, nil
}
