package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// signToken builds a signed HS256 token carrying the given claims.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "whitespace", raw: "  abc.def.ghi \n", want: "abc.def.ghi"},
		{name: "quoted", raw: `"abc.def.ghi"`, want: "abc.def.ghi"},
		{name: "bearer prefix", raw: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "bearer lowercase", raw: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "quoted bearer", raw: `"Bearer abc.def.ghi"`, want: "abc.def.ghi"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeToken(tt.raw))
		})
	}
}

func TestDecodeClaims(t *testing.T) {
	t.Run("garbage yields nil", func(t *testing.T) {
		assert.Nil(t, decodeClaims("not-a-token"))
		assert.Nil(t, decodeClaims(""))
	})

	t.Run("valid token yields claims without verification", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"sub": "42"})
		claims := decodeClaims(token)
		require.NotNil(t, claims)
		assert.Equal(t, "42", claims["sub"])
	})
}

func TestSubjectID(t *testing.T) {
	t.Run("string sub", func(t *testing.T) {
		id, ok := subjectID(jwt.MapClaims{"sub": "17"})
		assert.True(t, ok)
		assert.Equal(t, int64(17), id)
	})

	t.Run("numeric sub", func(t *testing.T) {
		id, ok := subjectID(jwt.MapClaims{"sub": float64(9)})
		assert.True(t, ok)
		assert.Equal(t, int64(9), id)
	})

	t.Run("non numeric string", func(t *testing.T) {
		_, ok := subjectID(jwt.MapClaims{"sub": "alice"})
		assert.False(t, ok)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := subjectID(jwt.MapClaims{})
		assert.False(t, ok)
		_, ok = subjectID(nil)
		assert.False(t, ok)
	})
}

func TestExpiry(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		at := time.Now().Add(time.Hour).Truncate(time.Second)
		got, ok := expiry(jwt.MapClaims{"exp": float64(at.Unix())})
		assert.True(t, ok)
		assert.Equal(t, at.Unix(), got.Unix())
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := expiry(jwt.MapClaims{})
		assert.False(t, ok)
	})
}

func TestRolesFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   []model.Role
	}{
		{
			name:   "roles array wins",
			claims: jwt.MapClaims{"roles": []interface{}{"ADMIN"}, "scope": "GERENTE"},
			want:   []model.Role{model.RoleAdmin},
		},
		{
			name:   "authorities fallback",
			claims: jwt.MapClaims{"authorities": []interface{}{"ROLE_GERENTE"}},
			want:   []model.Role{model.RoleGerente},
		},
		{
			name:   "perfis fallback",
			claims: jwt.MapClaims{"perfis": []interface{}{"admin"}},
			want:   []model.Role{model.RoleAdmin},
		},
		{
			name:   "scope string",
			claims: jwt.MapClaims{"scope": "ROLE_DEV ADMIN"},
			want:   []model.Role{model.RoleDev, model.RoleAdmin},
		},
		{
			name:   "singular role",
			claims: jwt.MapClaims{"role": "gerente"},
			want:   []model.Role{model.RoleGerente},
		},
		{
			name:   "unknown roles dropped",
			claims: jwt.MapClaims{"roles": []interface{}{"SUPERUSER", "ADMIN", "ADMIN"}},
			want:   []model.Role{model.RoleAdmin},
		},
		{
			name:   "no claims",
			claims: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rolesFromClaims(tt.claims))
		})
	}
}
