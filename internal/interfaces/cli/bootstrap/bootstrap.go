// Package bootstrap holds the start-up steps shared by every subcommand.
package bootstrap

import (
	"fmt"

	"github.com/chamberirc/chamberbnc/internal/infrastructure/config"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/persistence"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/recordstore"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// Init loads the configuration and sets up logging and the display timezone.
func Init(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := biztime.Init(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}
	return cfg, nil
}

type Stores struct {
	Requests *persistence.RequestTable
	Tickets  *persistence.TicketTable
}

func OpenStores(cfg *config.Config, log logger.Interface, opts ...recordstore.Option) (*Stores, error) {
	requests, err := persistence.OpenRequestTable(cfg.Storage.RequestDB, log, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open request database: %w", err)
	}
	tickets, err := persistence.OpenTicketTable(cfg.Storage.TicketDB, log, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open ticket database: %w", err)
	}
	return &Stores{Requests: requests, Tickets: tickets}, nil
}
