package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// ReportsService wraps the /relatorios export endpoints. Every export
// returns a rendered PDF as raw bytes.
type ReportsService struct {
	client *Client
}

// NewReportsService creates the service on top of the shared client.
func NewReportsService(c *Client) *ReportsService {
	return &ReportsService{client: c}
}

// ExportGeral renders the general report for a period.
func (s *ReportsService) ExportGeral(ctx context.Context, filtro model.PeriodoFilter) ([]byte, error) {
	return s.export(ctx, "/relatorios/geral/export", filtro)
}

// ExportFinanceiro renders the ledger report for a period.
func (s *ReportsService) ExportFinanceiro(ctx context.Context, filtro model.PeriodoFilter) ([]byte, error) {
	return s.export(ctx, "/relatorios/financeiro/export", filtro)
}

// ExportHospedagens renders the stays report for a period.
func (s *ReportsService) ExportHospedagens(ctx context.Context, filtro model.PeriodoFilter) ([]byte, error) {
	return s.export(ctx, "/relatorios/hospedagens/export", filtro)
}

// ExportQuartos renders the rooms report for a period.
func (s *ReportsService) ExportQuartos(ctx context.Context, filtro model.PeriodoFilter) ([]byte, error) {
	return s.export(ctx, "/relatorios/quartos/export", filtro)
}

// ExportReservas renders the reservations report for a period.
func (s *ReportsService) ExportReservas(ctx context.Context, filtro model.PeriodoFilter) ([]byte, error) {
	return s.export(ctx, "/relatorios/reservas/export", filtro)
}

// export POSTs the filter and reads back the binary document.
func (s *ReportsService) export(ctx context.Context, path string, filtro model.PeriodoFilter) ([]byte, error) {
	payload, err := json.Marshal(filtro)
	if err != nil {
		return nil, fmt.Errorf("marshaling report filter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.BaseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading report body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: backendMessage(data)}
	}

	return data, nil
}
