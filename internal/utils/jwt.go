package utils // package utils provides helpers for password hashing and session tokens

import (
	"errors"  // errors defines the verification sentinel
	"strconv" // strconv converts the numeric user id to and from the subject claim
	"time"    // time computes issue and expiry instants

	"github.com/golang-jwt/jwt/v5" // JWT library for signing and parsing tokens
)

// ErrInvalidToken is returned by Verify for any token that must not be
// trusted: bad signature, unexpected algorithm, malformed payload,
// non-numeric subject, or missing or past expiry.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed session token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Identity is what a verified token proves about its bearer.
type Identity struct {
	UserID uint64
	Email  string
}

// sessionClaims is the JWT payload: sub carries the decimal user id.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens with a single
// process-wide secret.  Tokens are stateless and cannot be revoked before
// they expire.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer for secret whose tokens live for ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue builds and signs a token for the given user.  The claims are the
// subject (user id as a string), email, issued-at and expiry.
func (i *TokenIssuer) Issue(userID uint64, email string) (AccessToken, error) {
	iat := i.now().UTC()
	exp := iat.Add(i.ttl)
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks the signature and expiry of raw and returns the identity it
// carries.  Every failure is reported as ErrInvalidToken.
func (i *TokenIssuer) Verify(raw string) (Identity, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: id, Email: claims.Email}, nil
}
