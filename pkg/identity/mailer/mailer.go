// Package mailer turns identity events into outbound emails. It owns the
// templates and the link formatting; callers hand it plaintext tokens and
// it never persists anything. Send failures are returned to the caller,
// which decides whether they are fatal.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/notifx"
)

const (
	tmplVerification = "identity_verification"
	tmplWelcome      = "identity_welcome"
	tmplOTP          = "identity_otp"
	tmplInvitation   = "identity_invitation"
)

// Mailer sends identity lifecycle emails.
type Mailer struct {
	client *notifx.Client
	from   string
	links  config.LinksConfig
}

// New creates a Mailer and registers its templates with the client.
func New(client *notifx.Client, cfg config.NotifxConfig, links config.LinksConfig) (*Mailer, error) {
	m := &Mailer{
		client: client,
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		links:  links,
	}

	for name, tmpl := range map[string]string{
		tmplVerification: verificationTemplate,
		tmplWelcome:      welcomeTemplate,
		tmplOTP:          otpTemplate,
		tmplInvitation:   invitationTemplate,
	} {
		if err := client.RegisterTemplate(name, tmpl); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// SendVerification mails the email-verification link carrying the plaintext
// token.
func (m *Mailer) SendVerification(ctx context.Context, email, name, tokenValue string, ttl time.Duration) error {
	data := map[string]string{
		"Name": displayName(name, email),
		"Link": withToken(m.links.VerificationURL, tokenValue),
		"TTL":  humanTTL(ttl),
	}

	return m.client.SendTemplatedEmail(ctx, tmplVerification, data, notifx.EmailMessage{
		From:    m.from,
		To:      []string{email},
		Subject: "Verify your email address",
	})
}

// SendWelcome mails the post-verification welcome message.
func (m *Mailer) SendWelcome(ctx context.Context, email, name string) error {
	data := map[string]string{
		"Name": displayName(name, email),
	}

	return m.client.SendTemplatedEmail(ctx, tmplWelcome, data, notifx.EmailMessage{
		From:    m.from,
		To:      []string{email},
		Subject: "Welcome to Ledgerline",
	})
}

// SendOTP mails a plaintext one-time code for passwordless login or
// password recovery.
func (m *Mailer) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	data := map[string]string{
		"Code": code,
		"TTL":  humanTTL(ttl),
		"Link": m.links.RecoveryURL,
	}

	return m.client.SendTemplatedEmail(ctx, tmplOTP, data, notifx.EmailMessage{
		From:    m.from,
		To:      []string{email},
		Subject: "Your one-time code",
	})
}

// InvitationEmail is the payload for an enterprise invitation. TempPassword
// is set only for accounts provisioned as part of the invite.
type InvitationEmail struct {
	To             string
	EnterpriseName string
	InviterName    string
	TokenValue     string
	TempPassword   string
	TTL            time.Duration
}

// SendInvitation mails the enterprise invitation link, including the
// temporary password when the account was just provisioned.
func (m *Mailer) SendInvitation(ctx context.Context, inv InvitationEmail) error {
	data := map[string]string{
		"EnterpriseName": inv.EnterpriseName,
		"InviterName":    inv.InviterName,
		"Link":           withToken(m.links.InvitationURL, inv.TokenValue),
		"TempPassword":   inv.TempPassword,
		"TTL":            humanTTL(inv.TTL),
	}

	return m.client.SendTemplatedEmail(ctx, tmplInvitation, data, notifx.EmailMessage{
		From:    m.from,
		To:      []string{inv.To},
		Subject: fmt.Sprintf("Invitation to join %s", inv.EnterpriseName),
	})
}

func withToken(base, tokenValue string) string {
	return base + "?token=" + url.QueryEscape(tokenValue)
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}

func humanTTL(ttl time.Duration) string {
	if ttl >= 24*time.Hour {
		days := int(ttl.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	if ttl >= time.Hour {
		hours := int(ttl.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	minutes := int(ttl.Minutes())
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
