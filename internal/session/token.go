package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/cyberportal/domain"
)

// TokenClaims is the identity carried inside the portal API's bearer
// token. The gateway never verifies the signature: tokens are minted
// and verified by the remote API, this side only needs the claims and
// the expiry to run its local session lifecycle.
type TokenClaims struct {
	UserID    string
	Name      string
	Email     string
	Phone     string
	Role      domain.Role
	IssuedAt  int64
	ExpiresAt int64
}

// Account builds the in-memory session projection from the claims.
func (c *TokenClaims) Account() *domain.Account {
	return &domain.Account{
		ID:    c.UserID,
		Name:  c.Name,
		Email: c.Email,
		Role:  c.Role,
		Phone: c.Phone,
	}
}

// DecodeToken parses a bearer token without signature verification and
// checks its expiry against now. It returns ErrTokenMalformed for
// tokens that do not parse or lack an exp claim, and ErrTokenExpired
// once the wall clock has passed the expiry.
func DecodeToken(raw string, now time.Time) (*TokenClaims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	if time.Unix(int64(exp), 0).Before(now) {
		return nil, domain.ErrTokenExpired
	}

	tc := &TokenClaims{
		ExpiresAt: int64(exp),
		Role:      domain.ParseRole(stringClaim(claims, "role")),
		UserID:    stringClaim(claims, "id"),
		Name:      stringClaim(claims, "name"),
		Email:     stringClaim(claims, "email"),
		Phone:     stringClaim(claims, "phone"),
	}
	if iat, ok := claims["iat"].(float64); ok {
		tc.IssuedAt = int64(iat)
	}

	return tc, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	v, _ := claims[name].(string)
	return v
}
