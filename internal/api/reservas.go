package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// ReservasService wraps the /reservas endpoints.
type ReservasService struct {
	client *Client
}

// NewReservasService creates the service on top of the shared client.
func NewReservasService(c *Client) *ReservasService {
	return &ReservasService{client: c}
}

// List fetches every reservation.
func (s *ReservasService) List(ctx context.Context) ([]model.Reserva, error) {
	var items []model.Reserva
	if err := s.client.Get(ctx, "/reservas", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PorStatus fetches reservations in a given lifecycle state.
func (s *ReservasService) PorStatus(ctx context.Context, status model.ReservaStatus) ([]model.Reserva, error) {
	var items []model.Reserva
	if err := s.client.Get(ctx, fmt.Sprintf("/reservas/status/%s", status), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a single reservation.
func (s *ReservasService) Get(ctx context.Context, id int64) (model.Reserva, error) {
	var out model.Reserva
	if err := s.client.Get(ctx, fmt.Sprintf("/reservas/%d", id), nil, &out); err != nil {
		return model.Reserva{}, err
	}
	return out, nil
}

// Criar registers a new reservation.
func (s *ReservasService) Criar(ctx context.Context, r model.Reserva) (model.Reserva, error) {
	var out model.Reserva
	if err := s.client.Post(ctx, "/reservas", r, &out); err != nil {
		return model.Reserva{}, err
	}
	return out, nil
}

// Atualizar updates a reservation.
func (s *ReservasService) Atualizar(ctx context.Context, id int64, r model.Reserva) (model.Reserva, error) {
	var out model.Reserva
	if err := s.client.Put(ctx, fmt.Sprintf("/reservas/%d", id), r, &out); err != nil {
		return model.Reserva{}, err
	}
	return out, nil
}

// Confirmar turns a pending reservation into a check-in.
func (s *ReservasService) Confirmar(ctx context.Context, id int64, observacoes string) (model.Reserva, error) {
	body := map[string]string{"observacoesCheckin": observacoes}

	var out model.Reserva
	if err := s.client.Put(ctx, fmt.Sprintf("/reservas/%d/confirmar", id), body, &out); err != nil {
		return model.Reserva{}, err
	}
	return out, nil
}

// Cancelar cancels a reservation with a reason.
func (s *ReservasService) Cancelar(ctx context.Context, id int64, motivo string) (model.Reserva, error) {
	body := map[string]string{"motivoCancelamento": motivo}

	var out model.Reserva
	if err := s.client.Put(ctx, fmt.Sprintf("/reservas/%d/cancelar", id), body, &out); err != nil {
		return model.Reserva{}, err
	}
	return out, nil
}

// QuartosDisponiveis lists rooms free for the given period.
func (s *ReservasService) QuartosDisponiveis(ctx context.Context, entrada, saida string) ([]model.Quarto, error) {
	query := url.Values{"dataEntrada": {entrada}, "dataSaida": {saida}}

	var items []model.Quarto
	if err := s.client.Get(ctx, "/reservas/quartos/disponiveis", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PorPeriodo fetches reservations overlapping a date interval.
func (s *ReservasService) PorPeriodo(ctx context.Context, inicio, fim string) ([]model.Reserva, error) {
	query := url.Values{"inicio": {inicio}, "fim": {fim}}

	var items []model.Reserva
	if err := s.client.Get(ctx, "/reservas/periodo", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}
