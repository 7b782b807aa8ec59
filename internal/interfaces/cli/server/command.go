package server

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chamberirc/chamberbnc/internal/application/provisioning"
	"github.com/chamberirc/chamberbnc/internal/application/relay"
	"github.com/chamberirc/chamberbnc/internal/application/reminder"
	"github.com/chamberirc/chamberbnc/internal/application/request"
	"github.com/chamberirc/chamberbnc/internal/application/ticket"
	ticketuc "github.com/chamberirc/chamberbnc/internal/application/ticket/usecases"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/audit"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/config"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/email"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/irc"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/ratelimit"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/recordstore"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/repository"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/scheduler"
	"github.com/chamberirc/chamberbnc/internal/interfaces/chat"
	"github.com/chamberirc/chamberbnc/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/chamberirc/chamberbnc/internal/interfaces/http"
	"github.com/chamberirc/chamberbnc/internal/shared/goroutine"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
	"github.com/chamberirc/chamberbnc/internal/shared/services/markdown"
	"github.com/chamberirc/chamberbnc/internal/shared/version"
)

const announceTimeout = 15 * time.Second

var configPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Connect to the configured networks and run the bot",
		Long:    `Connect to every configured network, join the bot channels and serve chat commands until interrupted.`,
		RunE:    run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the config file (default $CHAMBERBNC_CONFIG or ./config/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap.Init(configPath)
	if err != nil {
		return err
	}
	log := logger.NewLogger()

	log.Infow("starting chamberbnc",
		"version", version.String(),
		"networks", len(cfg.Servers),
		"nodes", len(cfg.ZNCServers))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(cfg, log)
	if err != nil {
		return err
	}
	return app.run(ctx)
}

type application struct {
	cfg    *config.Config
	irc    *irc.Manager
	sched  *scheduler.SchedulerManager
	router *httpRouter.Router
	logger logger.Interface
}

func build(cfg *config.Config, log logger.Interface) (*application, error) {
	ircManager := irc.NewManager(cfg, log)

	stores, err := bootstrap.OpenStores(cfg, log, recordstore.WithDegradedHook(func(table string, err error) {
		goroutine.SafeGo(log, "degraded-announce", func() {
			ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
			defer cancel()
			_ = ircManager.AnnounceAdmin(ctx, fmt.Sprintf("Warning: the %s database could not be saved (%v). Changes are not being persisted.", table, err))
		})
	}))
	if err != nil {
		return nil, err
	}
	requestRepo := repository.NewRequestRepository(stores.Requests)
	ticketRepo := repository.NewTicketRepository(stores.Tickets)

	sched, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	nodes := make([]provisioning.Node, 0, len(cfg.ZNCServers))
	for _, z := range cfg.ZNCServers {
		nodes = append(nodes, provisioning.NodeFromConfig(z))
	}
	orchestrator := provisioning.NewOrchestrator(nodes, ircManager, sched, ircManager, cfg.Provisioning.SettleDelay, log)

	adminServer := ""
	if n, ok := cfg.Network(cfg.Admin.Network); ok {
		adminServer = n.Server
	}
	gateway := email.NewSMTPGateway(cfg.Mail, markdown.NewRenderer(), log)
	mailer := email.NewMailer(gateway, email.Branding{
		Name:          cfg.Mail.FromName,
		CommandPrefix: cfg.Bot.CommandPrefix,
		Channel:       cfg.Bot.PrimaryChannel(),
		Server:        adminServer,
	}, cfg.NotifyMail, log)

	var auditor ticketuc.Auditor = audit.Discard{}
	if cfg.Storage.AuditLog != "" {
		fileLog, err := audit.NewFileLog(cfg.Storage.AuditLog)
		if err != nil {
			return nil, err
		}
		auditor = fileLog
	}

	requestService := request.NewServiceDDD(requestRepo, orchestrator, mailer, ircManager, log)
	ticketService := ticket.NewServiceDDD(ticketRepo, ircManager, mailer, auditor, log)

	limiter, err := ratelimit.New(cfg.RateLimit, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	broadcaster := relay.NewBroadcaster(cfg.Relay.Channels, ircManager, relay.DefaultSendTimeout, log)
	dispatcher := chat.NewDispatcher(requestService, ticketService, ircNetworks{ircManager}, orchestrator, limiter, chat.Options{
		Prefix:       cfg.Bot.CommandPrefix,
		AdminNetwork: cfg.Admin.Network,
		AdminChannel: cfg.Admin.Channel,
		TopicChannel: broadcaster.DefaultChannel(),
	}, log)
	ircManager.SetHandlers(dispatchInbound(dispatcher), broadcaster)

	processor := reminder.NewProcessor(requestRepo, ticketRepo, ircManager, log)
	if err := sched.RegisterReminderJob(cfg.Reminders.PendingInterval, processor); err != nil {
		return nil, fmt.Errorf("failed to register reminder job: %w", err)
	}

	app := &application{cfg: cfg, irc: ircManager, sched: sched, logger: log}
	if cfg.HTTP.Addr != "" {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
		app.router = httpRouter.NewRouter(statusSource{irc: ircManager, stores: stores, sched: sched}, log)
	}
	return app, nil
}

// run blocks until ctx is cancelled or a component fails.
func (a *application) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	a.sched.Start()
	a.irc.Start(ctx)

	if a.router != nil {
		g.Go(func() error {
			return a.router.Serve(ctx, a.cfg.HTTP.Addr)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Infow("shutting down")
		a.irc.Stop()
		if err := a.sched.Stop(); err != nil {
			a.logger.Errorw("failed to stop scheduler", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Infow("chamberbnc exited gracefully")
	return nil
}
