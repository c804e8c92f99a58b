package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// UsuariosService wraps the /usuarios endpoints (user management page
// plus profile side effects used by the whole console).
type UsuariosService struct {
	client *Client
}

// NewUsuariosService creates the service on top of the shared client.
func NewUsuariosService(c *Client) *UsuariosService {
	return &UsuariosService{client: c}
}

// UsuarioPage is one page of managed accounts.
type UsuarioPage struct {
	Items      []model.Usuario `json:"items"`
	TotalItems int             `json:"totalItems"`
}

// List fetches a page of accounts, optionally filtered by a query.
func (s *UsuariosService) List(ctx context.Context, page, size int, q string) (UsuarioPage, error) {
	query := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	if q != "" {
		query.Set("q", q)
	}

	var out UsuarioPage
	if err := s.client.Get(ctx, "/usuarios", query, &out); err != nil {
		return UsuarioPage{}, err
	}
	return out, nil
}

// Get fetches a single account.
func (s *UsuariosService) Get(ctx context.Context, id int64) (model.Usuario, error) {
	var out model.Usuario
	if err := s.client.Get(ctx, fmt.Sprintf("/usuarios/%d", id), nil, &out); err != nil {
		return model.Usuario{}, err
	}
	return out, nil
}

// Criar registers an account. The backend answers with a generated
// temporary password flag baked into the account record.
func (s *UsuariosService) Criar(ctx context.Context, u model.Usuario) (model.Usuario, error) {
	var out model.Usuario
	if err := s.client.Post(ctx, "/usuarios", u, &out); err != nil {
		return model.Usuario{}, err
	}
	return out, nil
}

// Atualizar updates an account.
func (s *UsuariosService) Atualizar(ctx context.Context, id int64, u model.Usuario) (model.Usuario, error) {
	var out model.Usuario
	if err := s.client.Put(ctx, fmt.Sprintf("/usuarios/%d", id), u, &out); err != nil {
		return model.Usuario{}, err
	}
	return out, nil
}

// Excluir removes an account.
func (s *UsuariosService) Excluir(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/usuarios/%d", id))
}

// AlterarStatus activates or deactivates an account. Deactivation makes
// the backend broadcast a forced logout targeting that user.
func (s *UsuariosService) AlterarStatus(ctx context.Context, id int64, status string) (model.Usuario, error) {
	body := map[string]string{"status": status}

	var out model.Usuario
	if err := s.client.Patch(ctx, fmt.Sprintf("/usuarios/%d/status", id), body, &out); err != nil {
		return model.Usuario{}, err
	}
	return out, nil
}

// ResetSenha issues a temporary password for an account.
func (s *UsuariosService) ResetSenha(ctx context.Context, id int64) (string, error) {
	var res struct {
		SenhaTemporaria string `json:"senhaTemporaria"`
	}
	if err := s.client.Post(ctx, fmt.Sprintf("/usuarios/%d/reset-senha", id), struct{}{}, &res); err != nil {
		return "", err
	}
	return res.SenhaTemporaria, nil
}

// AlterarSenha changes the signed-in user's own password, completing a
// mandatory password-change flow.
func (s *UsuariosService) AlterarSenha(ctx context.Context, senhaAtual, novaSenha string) error {
	body := map[string]string{
		"senhaAtual": senhaAtual,
		"novaSenha":  novaSenha,
	}
	return s.client.Post(ctx, "/usuarios/alterar-senha", body, nil)
}

// Perfis lists the role names assignable on the user form.
func (s *UsuariosService) Perfis(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.client.Get(ctx, "/usuarios/perfis", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AtualizarTema persists the signed-in user's theme preference.
func (s *UsuariosService) AtualizarTema(ctx context.Context, id int64, tema string) error {
	body := map[string]string{"tema": tema}
	return s.client.Patch(ctx, fmt.Sprintf("/usuarios/%d/tema", id), body, nil)
}
