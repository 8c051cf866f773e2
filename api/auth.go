package api

import (
	"errors"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// Auth is the token service. It issues HS256 tokens signed with the
// process-wide secret and verifies incoming bearer tokens. When a JWKS is
// configured, RS256 tokens issued by an external identity provider are
// accepted as well.
type Auth struct {
	secret []byte
	ttl    time.Duration
	jwks   *keyfunc.JWKS
	parser *jwt.Parser
}

// NewAuth creates the token service. The secret is immutable for the process
// lifetime; jwks may be nil.
func NewAuth(secret []byte, ttl time.Duration, jwks *keyfunc.JWKS) *Auth {
	if len(secret) == 0 {
		panic("api.NewAuth: empty signing secret")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	methods := []string{"HS256"}
	if jwks != nil {
		methods = append(methods, "RS256")
	}
	return &Auth{
		secret: secret,
		ttl:    ttl,
		jwks:   jwks,
		parser: jwt.NewParser(jwt.WithValidMethods(methods)),
	}
}

// IssueToken signs a token carrying the subject, issue time and expiration.
func (a *Auth) IssueToken(subject string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.ttl)
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// SubjectFromAuthHeader extracts and verifies the bearer token from an
// Authorization header value and returns its subject.
func (a *Auth) SubjectFromAuthHeader(header string) (string, error) {
	token, err := bearerTokenFromString(header)
	if err != nil {
		return "", err
	}
	return a.SubjectFromBearer(token)
}

// SubjectFromBearer verifies a raw bearer token. Verification fails when the
// signature does not match, the token is malformed, or it has expired.
func (a *Auth) SubjectFromBearer(token []byte) (string, error) {
	if len(token) == 0 {
		return "", errBadAuthorization
	}

	parsed, err := a.parser.Parse(readOnlyString(token), a.keyForToken)
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return "", errors.New("token expired")
	}
	if !claims.VerifyIssuedAt(now, false) {
		return "", errors.New("token used before issued")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}

func (a *Auth) keyForToken(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
		return a.secret, nil
	}
	if a.jwks == nil {
		return nil, errors.New("unexpected signing method")
	}
	return a.jwks.Keyfunc(t)
}
