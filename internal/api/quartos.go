package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// QuartosService wraps the /quartos endpoints.
type QuartosService struct {
	client *Client
}

// NewQuartosService creates the service on top of the shared client.
func NewQuartosService(c *Client) *QuartosService {
	return &QuartosService{client: c}
}

// List fetches all rooms.
func (s *QuartosService) List(ctx context.Context) ([]model.Quarto, error) {
	var items []model.Quarto
	if err := s.client.Get(ctx, "/quartos", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Buscar searches rooms by number or type.
func (s *QuartosService) Buscar(ctx context.Context, q string) ([]model.Quarto, error) {
	var items []model.Quarto
	if err := s.client.Get(ctx, "/quartos/buscar", url.Values{"q": {q}}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Criar registers a new room.
func (s *QuartosService) Criar(ctx context.Context, quarto model.Quarto) (model.Quarto, error) {
	var out model.Quarto
	if err := s.client.Post(ctx, "/quartos", quarto, &out); err != nil {
		return model.Quarto{}, err
	}
	return out, nil
}

// Atualizar updates a room.
func (s *QuartosService) Atualizar(ctx context.Context, id int64, quarto model.Quarto) (model.Quarto, error) {
	var out model.Quarto
	if err := s.client.Put(ctx, fmt.Sprintf("/quartos/%d", id), quarto, &out); err != nil {
		return model.Quarto{}, err
	}
	return out, nil
}

// Liberar forces a room back to the available state.
func (s *QuartosService) Liberar(ctx context.Context, id int64) (model.Quarto, error) {
	var out model.Quarto
	if err := s.client.Put(ctx, fmt.Sprintf("/quartos/%d/liberar", id), struct{}{}, &out); err != nil {
		return model.Quarto{}, err
	}
	return out, nil
}

// Excluir removes a room.
func (s *QuartosService) Excluir(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/quartos/%d", id))
}
