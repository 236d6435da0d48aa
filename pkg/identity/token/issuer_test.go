package token_test

import (
	"testing"
	"time"

	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/identity/token"
	"github.com/ledgerline/identity/pkg/kernel"
)

func newIssuer(accessTTL, refreshTTL time.Duration) *token.Issuer {
	return token.NewIssuer(config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "test",
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	})
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer := newIssuer(time.Minute, time.Hour)
	userID := kernel.NewUserID("user-1")

	tokenString, err := issuer.Issue(userID, token.PurposeAccess)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Verify(tokenString, token.PurposeAccess)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected subject %q, got %q", userID, claims.UserID)
	}
	if claims.Purpose != token.PurposeAccess {
		t.Fatalf("expected access purpose, got %q", claims.Purpose)
	}
}

func TestIssuer_WrongPurposeRejected(t *testing.T) {
	issuer := newIssuer(time.Minute, time.Hour)

	refresh, err := issuer.Issue(kernel.NewUserID("user-1"), token.PurposeRefresh)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(refresh, token.PurposeAccess); err == nil {
		t.Fatal("expected refresh token to be rejected as access token")
	}

	access, err := issuer.Issue(kernel.NewUserID("user-1"), token.PurposeAccess)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := issuer.Verify(access, token.PurposeRefresh); err == nil {
		t.Fatal("expected access token to be rejected as refresh token")
	}
}

func TestIssuer_ExpiredRejected(t *testing.T) {
	issuer := newIssuer(-time.Minute, time.Hour)

	tokenString, err := issuer.Issue(kernel.NewUserID("user-1"), token.PurposeAccess)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = issuer.Verify(tokenString, token.PurposeAccess)
	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
	if !token.IsUnauthorized(err) {
		t.Fatalf("expected an unauthorized error, got %v", err)
	}
}

func TestIssuer_TamperedRejected(t *testing.T) {
	issuer := newIssuer(time.Minute, time.Hour)

	tokenString, err := issuer.Issue(kernel.NewUserID("user-1"), token.PurposeAccess)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tampered := tokenString[:len(tokenString)-2] + "xx"
	if _, err := issuer.Verify(tampered, token.PurposeAccess); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}

	other := newIssuer(time.Minute, time.Hour)
	wrongKey := token.NewIssuer(config.JWTConfig{Secret: "other-secret", AccessTTL: time.Minute})
	signed, err := wrongKey.Issue(kernel.NewUserID("user-1"), token.PurposeAccess)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := other.Verify(signed, token.PurposeAccess); err == nil {
		t.Fatal("expected token signed with another key to be rejected")
	}
}

func TestIssuer_IssuePair(t *testing.T) {
	issuer := newIssuer(30*time.Minute, time.Hour)

	pair, err := issuer.IssuePair(kernel.NewUserID("user-1"))
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %q", pair.TokenType)
	}
	if pair.ExpiresIn != int((30 * time.Minute).Seconds()) {
		t.Fatalf("expected expires_in 1800, got %d", pair.ExpiresIn)
	}

	if _, err := issuer.Verify(pair.AccessToken, token.PurposeAccess); err != nil {
		t.Fatalf("access token failed verification: %v", err)
	}
	if _, err := issuer.Verify(pair.RefreshToken, token.PurposeRefresh); err != nil {
		t.Fatalf("refresh token failed verification: %v", err)
	}
}

func TestIsUnauthorized_OtherErrors(t *testing.T) {
	if token.IsUnauthorized(nil) {
		t.Fatal("nil is not an unauthorized error")
	}
}
