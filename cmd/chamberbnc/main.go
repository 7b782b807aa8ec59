package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chamberirc/chamberbnc/internal/interfaces/cli/records"
	"github.com/chamberirc/chamberbnc/internal/interfaces/cli/server"
	"github.com/chamberirc/chamberbnc/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "chamberbnc",
		Short:        "ChamberBNC - IRC bouncer administration bot",
		Long:         `ChamberBNC handles bouncer account requests and support tickets over IRC, provisions approved accounts on ZNC nodes and relays shared channels between networks.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		records.NewRequestsCommand(),
		records.NewTicketsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
