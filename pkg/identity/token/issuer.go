package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/kernel"
)

// Purpose is the intended use of a bearer token. A token presented for an
// operation must carry the matching purpose.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

// Claims is the decoded assertion carried by a verified token.
type Claims struct {
	UserID    kernel.UserID
	Purpose   Purpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Pair bundles a freshly minted access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Issuer mints and verifies HS256-signed bearer tokens. It is stateless
// beyond the signing secret and the two configured lifetimes.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates an Issuer from immutable configuration.
func NewIssuer(cfg config.JWTConfig) *Issuer {
	accessTTL := cfg.AccessTTL
	if accessTTL == 0 {
		accessTTL = 30 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "ledgerline-identity"
	}

	return &Issuer{
		secret:     []byte(cfg.Secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

type signedClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

func (i *Issuer) lifetime(purpose Purpose) time.Duration {
	if purpose == PurposeRefresh {
		return i.refreshTTL
	}
	return i.accessTTL
}

// Issue mints a signed token asserting {sub: userID, type: purpose,
// exp: now+lifetime(purpose)}. Pure computation, no side effects.
func (i *Issuer) Issue(userID kernel.UserID, purpose Purpose) (string, error) {
	now := time.Now()

	claims := signedClaims{
		TokenType: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime(purpose))),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", ErrGenerationFailed().WithDetail("error", err.Error())
	}

	return tokenString, nil
}

// Verify decodes tokenString, checks signature and expiry, and requires the
// embedded purpose to equal expected. Expired and malformed tokens always
// fail closed; there is no silent refresh here.
func (i *Issuer) Verify(tokenString string, expected Purpose) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &signedClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken()
		}
		return nil, ErrInvalidToken().WithDetail("error", err.Error())
	}

	if !parsed.Valid {
		return nil, ErrInvalidToken()
	}

	claims, ok := parsed.Claims.(*signedClaims)
	if !ok {
		return nil, ErrInvalidToken().WithDetail("error", "invalid claims type")
	}

	if claims.TokenType != string(expected) {
		return nil, ErrWrongPurpose().
			WithDetail("expected", string(expected)).
			WithDetail("got", claims.TokenType)
	}

	return &Claims{
		UserID:    kernel.NewUserID(claims.Subject),
		Purpose:   Purpose(claims.TokenType),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssuePair mints an access/refresh pair for userID.
func (i *Issuer) IssuePair(userID kernel.UserID) (*Pair, error) {
	access, err := i.Issue(userID, PurposeAccess)
	if err != nil {
		return nil, err
	}

	refresh, err := i.Issue(userID, PurposeRefresh)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(i.accessTTL.Seconds()),
	}, nil
}

// IsUnauthorized reports whether err is any token verification failure.
// Callers at the boundary collapse all of these to one unauthorized
// outcome so responses do not reveal which check failed.
func IsUnauthorized(err error) bool {
	var e *errx.Error
	if !errx.As(err, &e) {
		return false
	}
	return e.IsCode(CodeInvalidToken) || e.IsCode(CodeExpiredToken) || e.IsCode(CodeWrongPurpose)
}
