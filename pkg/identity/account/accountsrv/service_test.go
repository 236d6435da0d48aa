package accountsrv_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/identity/account"
	"github.com/ledgerline/identity/pkg/identity/account/accountsrv"
	"github.com/ledgerline/identity/pkg/identity/credential"
	"github.com/ledgerline/identity/pkg/identity/onetime"
	"github.com/ledgerline/identity/pkg/identity/token"
	"github.com/ledgerline/identity/pkg/identity/user"
	"github.com/ledgerline/identity/pkg/identity/user/usertest"
	"github.com/ledgerline/identity/pkg/kernel"
	"github.com/ledgerline/identity/pkg/ptrx"
)

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	verifications []string
	welcomes      []string
	otps          []string
	lastToken     string
	lastCode      string
	fail          error
}

func (m *fakeMailer) SendVerification(_ context.Context, email, _, tokenValue string, _ time.Duration) error {
	if m.fail != nil {
		return m.fail
	}
	m.verifications = append(m.verifications, email)
	m.lastToken = tokenValue
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, email, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.welcomes = append(m.welcomes, email)
	return nil
}

func (m *fakeMailer) SendOTP(_ context.Context, email, code string, _ time.Duration) error {
	if m.fail != nil {
		return m.fail
	}
	m.otps = append(m.otps, email)
	m.lastCode = code
	return nil
}

// fakeGate allows or blocks issuance and records checks.
type fakeGate struct {
	blocked bool
	checks  []string
}

func (g *fakeGate) Allow(_ context.Context, contact string) bool {
	g.checks = append(g.checks, contact)
	return !g.blocked
}

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		JWT:          config.JWTConfig{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Password:     config.PasswordConfig{BcryptCost: 4},
		OTP:          config.OTPConfig{Length: 6, TTL: 10 * time.Minute},
		Verification: config.VerificationConfig{TTL: time.Hour},
	}
}

type fixture struct {
	svc   *accountsrv.Service
	repo  *usertest.Repo
	mail  *fakeMailer
	gate  *fakeGate
	vault *credential.Vault
}

func newFixture(users ...*user.User) *fixture {
	cfg := testConfig()
	repo := usertest.NewRepo(users...)
	vault := credential.NewVault(cfg.Password.BcryptCost)
	issuer := token.NewIssuer(cfg.JWT)
	secrets := onetime.NewManager(repo, vault, cfg)
	mail := &fakeMailer{}
	gate := &fakeGate{}

	return &fixture{
		svc:   accountsrv.NewService(repo, vault, issuer, secrets, gate, mail, cfg),
		repo:  repo,
		mail:  mail,
		gate:  gate,
		vault: vault,
	}
}

func seedUser(f *fixture, email, username, password string, active bool) *user.User {
	hash, _ := f.vault.Hash(password)
	u := &user.User{
		ID:           kernel.NewUserID("seed-" + username),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     active,
	}
	_ = f.repo.Create(context.Background(), u)
	return u
}

func TestRegister_Success(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "Str0ng!pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if result.Warning != "" {
		t.Fatalf("unexpected warning: %q", result.Warning)
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}
	if result.User.EmailVerified {
		t.Fatal("new accounts must start unverified")
	}
	if len(f.mail.verifications) != 1 {
		t.Fatalf("expected one verification email, got %d", len(f.mail.verifications))
	}

	stored := f.repo.Get(result.User.ID)
	if stored.PasswordHash == "Str0ng!pass" {
		t.Fatal("password must be stored hashed")
	}
	if stored.VerificationToken == nil {
		t.Fatal("expected a pending verification token")
	}
}

func TestRegister_WeakPasswordRejectedBeforeCreate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "weak",
	})
	if err == nil {
		t.Fatal("expected weak password to be rejected")
	}

	if _, err := f.repo.FindByEmail(context.Background(), "alice@example.com"); err == nil {
		t.Fatal("no account must be created for a rejected password")
	}
}

func TestRegister_DuplicateNamesField(t *testing.T) {
	f := newFixture()
	seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	_, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "Str0ng!pass",
	})
	if !errx.HasCode(err, user.CodeEmailTaken) {
		t.Fatalf("expected email conflict, got %v", err)
	}

	_, err = f.svc.Register(context.Background(), account.RegisterInput{
		Email:    "other@example.com",
		Username: "alice",
		Password: "Str0ng!pass",
	})
	if !errx.HasCode(err, user.CodeUsernameTaken) {
		t.Fatalf("expected username conflict, got %v", err)
	}
}

func TestRegister_MailFailureDegradesToWarning(t *testing.T) {
	f := newFixture()
	f.mail.fail = errors.New("smtp down")

	result, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Str0ng!pass",
	})
	if err != nil {
		t.Fatalf("Register must not fail on mail errors: %v", err)
	}
	if result.Warning == "" {
		t.Fatal("expected a warning when the verification email fails")
	}

	// the account itself exists
	if _, err := f.repo.FindByEmail(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("expected account to be committed: %v", err)
	}
}

func TestVerifyEmail_FullFlow(t *testing.T) {
	f := newFixture()

	reg, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Str0ng!pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := f.svc.VerifyEmail(context.Background(), f.mail.lastToken)
	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if !result.User.EmailVerified {
		t.Fatal("expected verified account")
	}
	if result.Tokens == nil || result.Tokens.AccessToken == "" {
		t.Fatal("expected a token pair after verification")
	}
	if len(f.mail.welcomes) != 1 {
		t.Fatalf("expected one welcome email, got %d", len(f.mail.welcomes))
	}

	stored := f.repo.Get(reg.User.ID)
	if stored.VerificationToken != nil {
		t.Fatal("expected token to be consumed")
	}
}

func TestVerifyEmail_WrongAndExpired(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.VerifyEmail(context.Background(), "bogus"); err == nil {
		t.Fatal("expected unknown token to fail")
	}

	reg, err := f.svc.Register(context.Background(), account.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Str0ng!pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	expired := time.Now().Add(-time.Minute)
	f.repo.Get(reg.User.ID).VerificationTokenExpiresAt = &expired

	if _, err := f.svc.VerifyEmail(context.Background(), f.mail.lastToken); err == nil {
		t.Fatal("expected expired token to fail")
	}
	if f.repo.Get(reg.User.ID).EmailVerified {
		t.Fatal("expired token must not verify the email")
	}
}

func TestLogin_IdentifierRules(t *testing.T) {
	f := newFixture()
	seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	if _, err := f.svc.Login(context.Background(), account.LoginInput{Password: "Str0ng!pass"}); err == nil {
		t.Fatal("expected login without identifier to fail")
	}
	if _, err := f.svc.Login(context.Background(), account.LoginInput{
		Email: "alice@example.com", Username: "alice", Password: "Str0ng!pass",
	}); err == nil {
		t.Fatal("expected login with both identifiers to fail")
	}

	byEmail, err := f.svc.Login(context.Background(), account.LoginInput{Email: "alice@example.com", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
	if byEmail.Tokens.AccessToken == "" {
		t.Fatal("expected tokens")
	}

	if _, err := f.svc.Login(context.Background(), account.LoginInput{Username: "alice", Password: "Str0ng!pass"}); err != nil {
		t.Fatalf("login by username failed: %v", err)
	}
}

func TestLogin_BadCredentialsIndistinguishable(t *testing.T) {
	f := newFixture()
	seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	_, unknownErr := f.svc.Login(context.Background(), account.LoginInput{Email: "nobody@example.com", Password: "Str0ng!pass"})
	_, wrongErr := f.svc.Login(context.Background(), account.LoginInput{Email: "alice@example.com", Password: "Wrong!pass1"})

	if !errx.HasCode(unknownErr, account.CodeInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", unknownErr)
	}
	if !errx.HasCode(wrongErr, account.CodeInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatal("unknown-user and wrong-password errors must be identical")
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture()
	seedUser(f, "alice@example.com", "alice", "Str0ng!pass", false)

	_, err := f.svc.Login(context.Background(), account.LoginInput{Email: "alice@example.com", Password: "Str0ng!pass"})
	if !errx.HasCode(err, account.CodeAccountDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestLogin_StampsLastLogin(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	if _, err := f.svc.Login(context.Background(), account.LoginInput{Email: "alice@example.com", Password: "Str0ng!pass"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if f.repo.Get(u.ID).LastLogin == nil {
		t.Fatal("expected last_login to be stamped")
	}
}

func TestRequestRecoveryCode_AntiEnumeration(t *testing.T) {
	f := newFixture()
	seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	known := f.svc.RequestRecoveryCode(context.Background(), "alice@example.com")
	unknown := f.svc.RequestRecoveryCode(context.Background(), "nobody@example.com")

	if known.Message != unknown.Message {
		t.Fatal("acknowledgement must not depend on account existence")
	}
	if known.Message != account.RecoveryAckMessage {
		t.Fatalf("unexpected ack: %q", known.Message)
	}
	if len(f.mail.otps) != 1 {
		t.Fatalf("expected exactly one OTP email, got %d", len(f.mail.otps))
	}
}

func TestRequestRecoveryCode_CooldownBeforeLookup(t *testing.T) {
	f := newFixture()
	seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)
	f.gate.blocked = true

	ack := f.svc.RequestRecoveryCode(context.Background(), "alice@example.com")
	if ack.Message != account.RecoveryAckMessage {
		t.Fatalf("throttled request must return the standard ack, got %q", ack.Message)
	}
	if len(f.mail.otps) != 0 {
		t.Fatal("throttled request must not send a code")
	}
	if len(f.gate.checks) != 1 {
		t.Fatalf("expected one gate check, got %d", len(f.gate.checks))
	}
}

func TestLoginWithCode_ClearsCodeAfterSuccess(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	f.svc.RequestRecoveryCode(context.Background(), "alice@example.com")
	code := f.mail.lastCode

	result, err := f.svc.LoginWithCode(context.Background(), "alice@example.com", code)
	if err != nil {
		t.Fatalf("LoginWithCode failed: %v", err)
	}
	if result.Tokens.AccessToken == "" {
		t.Fatal("expected tokens")
	}

	if f.repo.Get(u.ID).OTPCode != nil {
		t.Fatal("expected code to be cleared after successful login")
	}
	if _, err := f.svc.LoginWithCode(context.Background(), "alice@example.com", code); err == nil {
		t.Fatal("expected reuse of the code to fail")
	}
}

func TestLoginWithCode_WrongCodeRetainsCode(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	f.svc.RequestRecoveryCode(context.Background(), "alice@example.com")

	if _, err := f.svc.LoginWithCode(context.Background(), "alice@example.com", "000000"); err == nil {
		if f.mail.lastCode == "000000" {
			t.Skip("generated code happened to be 000000")
		}
		t.Fatal("expected wrong code to fail")
	}
	if f.repo.Get(u.ID).OTPCode == nil {
		t.Fatal("failed attempt must not clear the pending code")
	}
}

func TestResetPassword_WeakNewPasswordRetainsCode(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	f.svc.RequestRecoveryCode(context.Background(), "alice@example.com")
	code := f.mail.lastCode

	err := f.svc.ResetPassword(context.Background(), account.ResetPasswordInput{
		Email:       "alice@example.com",
		Code:        code,
		NewPassword: "weak",
	})
	if err == nil {
		t.Fatal("expected weak password to be rejected")
	}
	if f.repo.Get(u.ID).OTPCode == nil {
		t.Fatal("the code must survive a rejected password so the user can retry")
	}

	// retry with an acceptable password succeeds and clears the code
	err = f.svc.ResetPassword(context.Background(), account.ResetPasswordInput{
		Email:       "alice@example.com",
		Code:        code,
		NewPassword: "N3w!strong",
	})
	if err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if f.repo.Get(u.ID).OTPCode != nil {
		t.Fatal("expected code to be cleared after a successful reset")
	}

	if _, err := f.svc.Login(context.Background(), account.LoginInput{Email: "alice@example.com", Password: "N3w!strong"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestRefresh_FlowAndInactiveRejected(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	result, err := f.svc.Login(context.Background(), account.LoginInput{Email: "alice@example.com", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	pair, err := f.svc.Refresh(context.Background(), result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("expected a fresh pair")
	}

	// an access token must not be accepted as a refresh token
	if _, err := f.svc.Refresh(context.Background(), result.Tokens.AccessToken); err == nil {
		t.Fatal("expected access token to be rejected on refresh")
	}

	// disabling the account invalidates refresh even though the token is valid
	f.repo.Get(u.ID).IsActive = false
	if _, err := f.svc.Refresh(context.Background(), result.Tokens.RefreshToken); err == nil {
		t.Fatal("expected refresh for a disabled account to fail")
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	err := f.svc.ChangePassword(context.Background(), u.ID, account.ChangePasswordInput{
		CurrentPassword: "Wrong!pass1",
		NewPassword:     "N3w!strong",
	})
	if !errx.HasCode(err, account.CodeInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	err = f.svc.ChangePassword(context.Background(), u.ID, account.ChangePasswordInput{
		CurrentPassword: "Str0ng!pass",
		NewPassword:     "N3w!strong",
	})
	if err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, err := f.svc.Login(context.Background(), account.LoginInput{Email: "alice@example.com", Password: "N3w!strong"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateProfile_NormalizesPhone(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	summary, err := f.svc.UpdateProfile(context.Background(), u.ID, user.Patch{
		FirstName:   ptrx.String("Alice"),
		PhoneNumber: ptrx.String("(212) 555-0123"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if summary.FirstName == nil || *summary.FirstName != "Alice" {
		t.Fatalf("expected first name to be applied, got %+v", summary.FirstName)
	}

	stored := f.repo.Get(u.ID)
	if stored.PhoneNumber == nil || *stored.PhoneNumber != "+12125550123" {
		t.Fatalf("expected E.164 phone, got %v", ptrx.StringValue(stored.PhoneNumber))
	}
}

func TestUpdateProfile_InvalidPhoneRejected(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	_, err := f.svc.UpdateProfile(context.Background(), u.ID, user.Patch{
		PhoneNumber: ptrx.String("not a phone"),
	})
	if !errx.HasCode(err, account.CodeInvalidPhone) {
		t.Fatalf("expected invalid phone error, got %v", err)
	}
}

func TestMe(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	summary, err := f.svc.Me(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if summary.Email != "alice@example.com" {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, err := f.svc.Me(context.Background(), kernel.NewUserID("ghost")); err == nil {
		t.Fatal("expected unknown user to fail")
	}
}

func TestResendVerification(t *testing.T) {
	f := newFixture()
	u := seedUser(f, "alice@example.com", "alice", "Str0ng!pass", true)

	f.svc.ResendVerification(context.Background(), "alice@example.com")
	if len(f.mail.verifications) != 1 {
		t.Fatalf("expected a verification email, got %d", len(f.mail.verifications))
	}
	if f.repo.Get(u.ID).VerificationToken == nil {
		t.Fatal("expected a fresh verification token")
	}

	// already verified accounts are left alone
	f.repo.Get(u.ID).EmailVerified = true
	f.svc.ResendVerification(context.Background(), "alice@example.com")
	if len(f.mail.verifications) != 1 {
		t.Fatal("verified accounts must not receive verification emails")
	}

	// unknown addresses are silently ignored
	f.svc.ResendVerification(context.Background(), "nobody@example.com")
	if len(f.mail.verifications) != 1 {
		t.Fatal("unknown addresses must not receive emails")
	}
}
