package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const DefaultTokenTTL = 15 * time.Minute

// AuthReason classifies why a credential was rejected.
type AuthReason string

const (
	ReasonMalformed        AuthReason = "malformed"
	ReasonExpired          AuthReason = "expired"
	ReasonSignatureInvalid AuthReason = "signature_invalid"
)

// AuthError is returned by Verify for any rejected credential. Callers must
// treat every AuthError the same way: refuse the connection and create no
// state.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s credential", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Authority issues and verifies the HS256 bearer tokens shared by the REST
// login surface and the hub handshake. Both sides hold the same Authority so
// they always agree on who a user is.
type Authority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthority(secret []byte, ttl time.Duration) *Authority {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authority{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// NewAuthorityAt is NewAuthority with an injectable clock, used by tests to
// mint already-expired tokens.
func NewAuthorityAt(secret []byte, ttl time.Duration, now func() time.Time) *Authority {
	a := NewAuthority(secret, ttl)
	if now != nil {
		a.now = now
	}
	return a
}

// IssueToken signs an access token for the user. validUntil overrides the
// configured TTL when non-zero.
func (a *Authority) IssueToken(user User, validUntil int64) (string, error) {
	if validUntil == 0 {
		validUntil = a.now().Add(a.ttl).Unix()
	}

	claims := jwt.MapClaims{
		"id":    user.Id,
		"email": user.Email,
		"exp":   validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks structure, signature and expiry and returns the stable
// identity (the email claim) the token was issued for. Any failure comes
// back as *AuthError.
func (a *Authority) Verify(tokenString string) (string, error) {
	if len(tokenString) == 0 {
		return "", &AuthError{Reason: ReasonMalformed, Err: errors.New("empty token")}
	}

	parser := jwt.Parser{}
	token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", &AuthError{Reason: classifyParseError(err), Err: err}
	}
	if !token.Valid {
		return "", &AuthError{Reason: ReasonSignatureInvalid, Err: errors.New("token is not valid")}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", &AuthError{Reason: ReasonMalformed, Err: errors.New("claims of unexpected type")}
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return "", &AuthError{Reason: ReasonMalformed, Err: errors.New("missing exp claim")}
	}
	if a.now().Unix() > int64(exp) {
		return "", &AuthError{Reason: ReasonExpired, Err: errors.New("token expired")}
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", &AuthError{Reason: ReasonMalformed, Err: errors.New("missing email claim")}
	}

	return email, nil
}

func classifyParseError(err error) AuthReason {
	var vErr *jwt.ValidationError
	if !errors.As(err, &vErr) {
		return ReasonMalformed
	}
	switch {
	case vErr.Errors&jwt.ValidationErrorMalformed != 0:
		return ReasonMalformed
	case vErr.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
		return ReasonExpired
	case vErr.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
		return ReasonSignatureInvalid
	}
	return ReasonMalformed
}
