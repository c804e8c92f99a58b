package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// HospedagensService wraps the /hospedagens endpoints.
type HospedagensService struct {
	client *Client
}

// NewHospedagensService creates the service on top of the shared client.
func NewHospedagensService(c *Client) *HospedagensService {
	return &HospedagensService{client: c}
}

// List fetches all stays, optionally filtered by a free-text query.
func (s *HospedagensService) List(ctx context.Context, q string) ([]model.Hospedagem, error) {
	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}

	var items []model.Hospedagem
	if err := s.client.Get(ctx, "/hospedagens", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Checkin opens a new stay.
func (s *HospedagensService) Checkin(ctx context.Context, payload model.CheckinPayload) (model.Hospedagem, error) {
	var out model.Hospedagem
	if err := s.client.Post(ctx, "/hospedagens", payload, &out); err != nil {
		return model.Hospedagem{}, err
	}
	return out, nil
}

// Editar updates the editable fields of an active stay.
func (s *HospedagensService) Editar(ctx context.Context, id int64, dto model.EditarHospedagem) (model.Hospedagem, error) {
	var out model.Hospedagem
	if err := s.client.Put(ctx, fmt.Sprintf("/hospedagens/%d", id), dto, &out); err != nil {
		return model.Hospedagem{}, err
	}
	return out, nil
}

// Checkout closes a stay, freeing its room and posting the ledger entry.
func (s *HospedagensService) Checkout(ctx context.Context, id int64, payload model.CheckoutPayload) (model.Hospedagem, error) {
	var out model.Hospedagem
	if err := s.client.Post(ctx, fmt.Sprintf("/hospedagens/%d/checkout", id), payload, &out); err != nil {
		return model.Hospedagem{}, err
	}
	return out, nil
}

// Excluir removes a stay record entirely.
func (s *HospedagensService) Excluir(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/hospedagens/%d", id))
}

// QuartosDisponiveis lists the room numbers currently free for check-in.
func (s *HospedagensService) QuartosDisponiveis(ctx context.Context) ([]string, error) {
	var rows []struct {
		Numero string `json:"numero"`
	}
	if err := s.client.Get(ctx, "/quartos/disponiveis", nil, &rows); err != nil {
		return nil, err
	}

	numeros := make([]string, 0, len(rows))
	for _, r := range rows {
		numeros = append(numeros, r.Numero)
	}
	return numeros, nil
}

// Recibo downloads the PDF receipt for a stay.
func (s *HospedagensService) Recibo(ctx context.Context, id int64) ([]byte, error) {
	return s.client.GetBytes(ctx, fmt.Sprintf("/hospedagens/%d/recibo", id), nil)
}
