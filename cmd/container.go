// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis, mail provider)
// and composes the identity module container. This is the only place that
// knows about every module.
package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/identity/identitycontainer"
	"github.com/ledgerline/identity/pkg/jobx"
	"github.com/ledgerline/identity/pkg/jobx/jobxredis"
	"github.com/ledgerline/identity/pkg/logx"
	"github.com/ledgerline/identity/pkg/notifx"
	"github.com/ledgerline/identity/pkg/notifx/notifxconsole"
	"github.com/ledgerline/identity/pkg/notifx/notifxses"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the composed module containers.
type Container struct {
	Config *config.Config

	DB     *sqlx.DB
	Redis  *redis.Client
	Notify *notifx.Client
	Jobs   *jobx.Client

	Identity *identitycontainer.Container
}

// NewContainer builds the full dependency graph. Infrastructure failures
// are fatal: the service is useless without its database.
func NewContainer(cfg *config.Config) *Container {
	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	return c
}

func (c *Container) initInfrastructure() {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Config.Database.Host,
		c.Config.Database.Port,
		c.Config.Database.User,
		c.Config.Database.Password,
		c.Config.Database.Name,
		c.Config.Database.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("Database connected")

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v", err)
	}
	logx.Info("Redis connected")

	c.Notify = notifx.NewClient(c.newMailProvider())

	c.Jobs = jobx.NewClient(jobxredis.NewRedisQueue(c.Redis), jobx.Options{
		Queues:      []string{"default"},
		Concurrency: 2,
	})
}

// newMailProvider selects the outbound email backend. The console provider
// is the default so local development needs no AWS credentials.
func (c *Container) newMailProvider() notifx.EmailSender {
	switch c.Config.Notifx.Provider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Failed to load AWS config: %v", err)
		}
		logx.WithField("region", c.Config.Notifx.AWSRegion).Info("Using SES mail provider")
		return notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Notifx.FromAddress)
	default:
		logx.Info("Using console mail provider")
		return notifxconsole.NewConsoleProvider()
	}
}

func (c *Container) initModules() {
	c.Identity = identitycontainer.New(identitycontainer.Deps{
		DB:     c.DB,
		Redis:  c.Redis,
		Cfg:    c.Config,
		Notify: c.Notify,
		Jobs:   c.Jobs,
	})
	logx.Info("Identity module initialized")
}

// Cleanup releases infrastructure connections on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.WithError(err).Warn("Database close failed")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.WithError(err).Warn("Redis close failed")
		}
	}
}
