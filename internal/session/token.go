package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pousadadobrejo/pousada-console/internal/model"
)

// NormalizeToken strips surrounding quotes, a leading "Bearer " prefix,
// and whitespace from a raw token value. Storage layers and backends
// have all been seen producing each of these variants.
func NormalizeToken(raw string) string {
	t := strings.TrimSpace(raw)
	if len(t) >= 2 && strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`) {
		t = t[1 : len(t)-1]
	}
	if len(t) >= 7 && strings.EqualFold(t[:7], "bearer ") {
		t = t[7:]
	}
	return strings.TrimSpace(t)
}

// decodeClaims reads the claims of a JWT without verifying its
// signature. The console never trusts these claims for authorization;
// they are read only for UI convenience (subject id, expiry, role
// display), and every decision derived from them is re-validated
// server-side. A malformed or tampered token yields nil, never a crash.
func decodeClaims(token string) jwt.MapClaims {
	if token == "" {
		return nil
	}

	tok, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}

// subjectID extracts a numeric subject claim. ok is false when the
// claim is absent or not numeric.
func subjectID(claims jwt.MapClaims) (int64, bool) {
	if claims == nil {
		return 0, false
	}

	switch sub := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case float64:
		return int64(sub), true
	}
	return 0, false
}

// expiry returns the token's expiry time. ok is false when the token
// carries no expiry claim.
func expiry(claims jwt.MapClaims) (time.Time, bool) {
	if claims == nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// rolesFromClaims recovers the role list from whichever claim the
// backend used: an explicit roles array, an authorities array, a
// profiles array, a space-delimited scope string, or a singular role
// field, in that order.
func rolesFromClaims(claims jwt.MapClaims) []model.Role {
	if claims == nil {
		return nil
	}

	var raw []string
	switch {
	case claimStrings(claims, "roles") != nil:
		raw = claimStrings(claims, "roles")
	case claimStrings(claims, "authorities") != nil:
		raw = claimStrings(claims, "authorities")
	case claimStrings(claims, "perfis") != nil:
		raw = claimStrings(claims, "perfis")
	default:
		if scope, ok := claims["scope"].(string); ok {
			raw = strings.Fields(scope)
		} else if role, ok := claims["role"].(string); ok {
			raw = []string{role}
		}
	}

	return normalizeRoles(raw)
}

// claimStrings reads a claim expected to hold an array of strings.
func claimStrings(claims jwt.MapClaims, key string) []string {
	arr, ok := claims[key].([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeRoles uppercases each candidate, strips any ROLE_ prefix,
// keeps only recognized roles, and removes duplicates preserving order.
func normalizeRoles(raw []string) []model.Role {
	seen := make(map[model.Role]bool, len(raw))
	var out []model.Role
	for _, r := range raw {
		name := strings.ToUpper(strings.TrimSpace(r))
		name = strings.TrimPrefix(name, "ROLE_")
		role := model.Role(name)
		if !model.KnownRole(role) || seen[role] {
			continue
		}
		seen[role] = true
		out = append(out, role)
	}
	return out
}
