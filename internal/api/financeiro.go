package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// FinanceiroService wraps the /financeiro/lancamentos endpoints.
type FinanceiroService struct {
	client *Client
}

// NewFinanceiroService creates the service on top of the shared client.
func NewFinanceiroService(c *Client) *FinanceiroService {
	return &FinanceiroService{client: c}
}

// List fetches ledger entries inside a period, optionally filtered by
// entry type.
func (s *FinanceiroService) List(ctx context.Context, periodo model.PeriodoFilter, tipo model.TipoLancamento) ([]model.Lancamento, error) {
	query := url.Values{}
	if periodo.Inicio != "" {
		query.Set("inicio", periodo.Inicio)
	}
	if periodo.Fim != "" {
		query.Set("fim", periodo.Fim)
	}
	if tipo != "" {
		query.Set("tipo", string(tipo))
	}

	var items []model.Lancamento
	if err := s.client.Get(ctx, "/financeiro/lancamentos", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Criar posts a manual ledger entry.
func (s *FinanceiroService) Criar(ctx context.Context, l model.Lancamento) (model.Lancamento, error) {
	var out model.Lancamento
	if err := s.client.Post(ctx, "/financeiro/lancamentos", l, &out); err != nil {
		return model.Lancamento{}, err
	}
	return out, nil
}

// Atualizar edits an entry. The backend tracks edit counts and authorship.
func (s *FinanceiroService) Atualizar(ctx context.Context, id int64, l model.Lancamento) (model.Lancamento, error) {
	var out model.Lancamento
	if err := s.client.Put(ctx, fmt.Sprintf("/financeiro/lancamentos/%d", id), l, &out); err != nil {
		return model.Lancamento{}, err
	}
	return out, nil
}

// Cancelar voids an entry with a reason. Entries are never deleted,
// only marked cancelled.
func (s *FinanceiroService) Cancelar(ctx context.Context, id int64, motivo string) error {
	query := url.Values{"motivo": {motivo}}
	_, err := s.client.do(ctx, "DELETE", fmt.Sprintf("/financeiro/lancamentos/%d", id), query, nil, nil)
	return err
}
