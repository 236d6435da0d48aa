// Package identitycontainer wires the identity bounded context. It is the
// only package that knows how the repos, engines, services and handlers fit
// together; cmd/ consumes the assembled container.
package identitycontainer

import (
	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/identity/account/accountsrv"
	"github.com/ledgerline/identity/pkg/identity/credential"
	"github.com/ledgerline/identity/pkg/identity/enterprise/enterpriseinfra"
	"github.com/ledgerline/identity/pkg/identity/httpapi"
	"github.com/ledgerline/identity/pkg/identity/httpapi/accountapi"
	"github.com/ledgerline/identity/pkg/identity/httpapi/invitationapi"
	"github.com/ledgerline/identity/pkg/identity/invitation/invitationsrv"
	"github.com/ledgerline/identity/pkg/identity/mailer"
	"github.com/ledgerline/identity/pkg/identity/maintenance"
	"github.com/ledgerline/identity/pkg/identity/onetime"
	"github.com/ledgerline/identity/pkg/identity/onetime/ratelimit"
	"github.com/ledgerline/identity/pkg/identity/token"
	"github.com/ledgerline/identity/pkg/identity/user/userinfra"
	"github.com/ledgerline/identity/pkg/jobx"
	"github.com/ledgerline/identity/pkg/logx"
	"github.com/ledgerline/identity/pkg/notifx"
	"github.com/redis/go-redis/v9"
)

// Deps are the external dependencies the identity module requires. No
// hidden globals; everything comes through here.
type Deps struct {
	DB     *sqlx.DB
	Redis  *redis.Client
	Cfg    *config.Config
	Notify *notifx.Client
	Jobs   *jobx.Client
}

// Container is the public surface of the identity module. Internal repos
// and engines stay private to the wiring.
type Container struct {
	AccountService    *accountsrv.Service
	InvitationService *invitationsrv.Service
	TokenIssuer       *token.Issuer

	AccountHandlers    *accountapi.Handlers
	InvitationHandlers *invitationapi.Handlers

	AuthMiddleware *httpapi.AuthMiddleware

	// Sweeper is the background expired-secret sweep; cmd/ schedules it
	// once the job runner is up.
	Sweeper *maintenance.Sweeper
}

// New constructs the identity dependency graph. Order matters: repos →
// engines → services → handlers → middleware.
func New(deps Deps) *Container {
	users := userinfra.NewPostgresUserRepository(deps.DB)
	enterprises := enterpriseinfra.NewPostgresEnterpriseRepository(deps.DB)
	memberships := enterpriseinfra.NewPostgresMembershipRepository(deps.DB)

	vault := credential.NewVault(deps.Cfg.Auth.Password.BcryptCost)
	issuer := token.NewIssuer(deps.Cfg.Auth.JWT)
	secrets := onetime.NewManager(users, vault, deps.Cfg.Auth)
	gate := ratelimit.NewCooldown(deps.Redis, deps.Cfg.Auth.OTP.ReissueCooldown)

	mail, err := mailer.New(deps.Notify, deps.Cfg.Notifx, deps.Cfg.Auth.Links)
	if err != nil {
		logx.Fatalf("identity: failed to register mail templates: %v", err)
	}

	accountSvc := accountsrv.NewService(users, vault, issuer, secrets, gate, mail, deps.Cfg.Auth)
	invitationSvc := invitationsrv.NewService(users, enterprises, memberships, vault, mail, deps.Cfg.Auth)

	sweeper := maintenance.NewSweeper(users, deps.Jobs, deps.Cfg.Maintenance.SweepInterval)

	return &Container{
		AccountService:     accountSvc,
		InvitationService:  invitationSvc,
		TokenIssuer:        issuer,
		AccountHandlers:    accountapi.NewHandlers(accountSvc),
		InvitationHandlers: invitationapi.NewHandlers(invitationSvc),
		AuthMiddleware:     httpapi.NewAuthMiddleware(issuer, users),
		Sweeper:            sweeper,
	}
}
