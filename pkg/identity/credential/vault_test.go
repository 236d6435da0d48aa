package credential_test

import (
	"testing"

	"github.com/ledgerline/identity/pkg/identity/credential"
)

func TestVault_HashAndVerify(t *testing.T) {
	v := credential.NewVault(4) // min cost to keep the test fast

	hash, err := v.Hash("Test@123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "Test@123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !v.Verify("Test@123", hash) {
		t.Fatal("expected matching password to verify")
	}
	if v.Verify("Wrong@123", hash) {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestVault_HashIsSalted(t *testing.T) {
	v := credential.NewVault(4)

	h1, err := v.Hash("Test@123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	h2, err := v.Hash("Test@123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVault_HashEmptyPassword(t *testing.T) {
	v := credential.NewVault(4)
	if _, err := v.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVault_ValidateStrength(t *testing.T) {
	v := credential.NewVault(4)

	if err := v.ValidateStrength("Test@123"); err != nil {
		t.Fatalf("expected Test@123 to pass, got %v", err)
	}

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "T@1a"},
		{"no uppercase", "test@123"},
		{"no lowercase", "TEST@123"},
		{"no digit", "Test@abc"},
		{"no symbol", "Test1234"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.ValidateStrength(tc.password); err == nil {
				t.Fatalf("expected %q to be rejected", tc.password)
			}
		})
	}
}

func TestVault_InvalidCostFallsBack(t *testing.T) {
	v := credential.NewVault(99)

	hash, err := v.Hash("Test@123")
	if err != nil {
		t.Fatalf("Hash failed with fallback cost: %v", err)
	}
	if !v.Verify("Test@123", hash) {
		t.Fatal("expected verify to succeed with fallback cost")
	}
}
