package model

// Role is one of the access profiles recognized by the backend.
type Role string

const (
	RoleDev     Role = "DEV"
	RoleAdmin   Role = "ADMIN"
	RoleGerente Role = "GERENTE"
)

// KnownRole reports whether r is one of the recognized roles.
func KnownRole(r Role) bool {
	switch r {
	case RoleDev, RoleAdmin, RoleGerente:
		return true
	}
	return false
}

// PwdReason explains why the backend is demanding a password change.
type PwdReason string

const (
	PwdReasonFirstLogin   PwdReason = "FIRST_LOGIN"
	PwdReasonResetByAdmin PwdReason = "RESET_BY_ADMIN"
	PwdReasonInactivated  PwdReason = "ACCOUNT_INACTIVATED"
	PwdReasonUnknown      PwdReason = "UNKNOWN"
)

// NormalizeReason maps an arbitrary backend string onto a known PwdReason,
// falling back to PwdReasonUnknown.
func NormalizeReason(raw string) PwdReason {
	switch PwdReason(raw) {
	case PwdReasonFirstLogin, PwdReasonResetByAdmin, PwdReasonInactivated:
		return PwdReason(raw)
	}
	return PwdReasonUnknown
}

// CurrentUser is the profile of the signed-in user as cached by the console.
// ID is zero when the backend token carried no usable subject claim.
type CurrentUser struct {
	ID                 int64     `json:"id,omitempty"`
	Nome               string    `json:"nome,omitempty"`
	Email              string    `json:"email,omitempty"`
	Username           string    `json:"username,omitempty"`
	Numero             string    `json:"numero,omitempty"`
	Roles              []Role    `json:"roles,omitempty"`
	AvatarURL          string    `json:"avatarUrl,omitempty"`
	Tema               string    `json:"tema,omitempty"`
	MustChangePassword bool      `json:"mustChangePassword,omitempty"`
	PwdChangeReason    PwdReason `json:"pwdChangeReason,omitempty"`
}

// HasRole reports whether the user carries the given role.
func (u CurrentUser) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Merge returns a copy of u with the non-zero fields of partial applied.
// Used after profile-affecting side effects (name or avatar change) so
// the UI reflects them without a refetch.
func (u CurrentUser) Merge(partial CurrentUser) CurrentUser {
	out := u
	if partial.ID != 0 {
		out.ID = partial.ID
	}
	if partial.Nome != "" {
		out.Nome = partial.Nome
	}
	if partial.Email != "" {
		out.Email = partial.Email
	}
	if partial.Username != "" {
		out.Username = partial.Username
	}
	if partial.Numero != "" {
		out.Numero = partial.Numero
	}
	if len(partial.Roles) > 0 {
		out.Roles = partial.Roles
	}
	if partial.AvatarURL != "" {
		out.AvatarURL = partial.AvatarURL
	}
	if partial.Tema != "" {
		out.Tema = partial.Tema
	}
	return out
}

// MustChangeFlag is the persisted marker that a mandatory password change
// is pending, kept across restarts until the change succeeds.
type MustChangeFlag struct {
	Reason PwdReason `json:"reason"`
	TS     int64     `json:"ts"`
}
