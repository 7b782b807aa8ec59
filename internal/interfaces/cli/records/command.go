// Package records lists stored requests and tickets without connecting to
// any network.
package records

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	requestdto "github.com/chamberirc/chamberbnc/internal/application/request/dto"
	requestuc "github.com/chamberirc/chamberbnc/internal/application/request/usecases"
	ticketdto "github.com/chamberirc/chamberbnc/internal/application/ticket/dto"
	ticketuc "github.com/chamberirc/chamberbnc/internal/application/ticket/usecases"
	"github.com/chamberirc/chamberbnc/internal/infrastructure/repository"
	"github.com/chamberirc/chamberbnc/internal/interfaces/cli/bootstrap"
	"github.com/chamberirc/chamberbnc/internal/shared/biztime"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

func NewRequestsCommand() *cobra.Command {
	var (
		configPath string
		pending    bool
	)

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect stored account requests",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List account requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.Init(configPath)
			if err != nil {
				return err
			}
			log := logger.NewLogger()
			stores, err := bootstrap.OpenStores(cfg, log)
			if err != nil {
				return err
			}

			uc := requestuc.NewListRequestsUseCase(repository.NewRequestRepository(stores.Requests), log)
			requests, err := uc.Execute(cmd.Context(), requestuc.ListRequestsQuery{PendingOnly: pending})
			if err != nil {
				return err
			}
			return writeRequests(cmd.OutOrStdout(), requests)
		},
	}
	list.Flags().BoolVar(&pending, "pending", false, "Only show requests that are not approved yet")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	cmd.AddCommand(list)
	return cmd
}

func NewTicketsCommand() *cobra.Command {
	var (
		configPath string
		open       bool
	)

	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Inspect stored support tickets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List support tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.Init(configPath)
			if err != nil {
				return err
			}
			log := logger.NewLogger()
			stores, err := bootstrap.OpenStores(cfg, log)
			if err != nil {
				return err
			}

			uc := ticketuc.NewListTicketsUseCase(repository.NewTicketRepository(stores.Tickets), log)
			tickets, err := uc.Execute(cmd.Context(), ticketuc.ListTicketsQuery{ActiveOnly: open})
			if err != nil {
				return err
			}
			return writeTickets(cmd.OutOrStdout(), tickets)
		},
	}
	list.Flags().BoolVar(&open, "open", false, "Only show open and in-progress tickets")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	cmd.AddCommand(list)
	return cmd
}

func writeRequests(out io.Writer, requests []*requestdto.RequestDTO) error {
	if len(requests) == 0 {
		_, err := fmt.Fprintln(out, "No requests.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tSERVER\tNODE\tSTATUS\tCREATED")
	for _, r := range requests {
		node := r.RequestedNode
		if node == "" {
			node = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s:%d\t%s\t%s\t%s\n",
			r.ID, r.Username, r.Email, r.TargetServer, r.TargetPort, node, r.Status, biztime.Format(r.CreatedAt))
	}
	return w.Flush()
}

func writeTickets(out io.Writer, tickets []*ticketdto.TicketDTO) error {
	if len(tickets) == 0 {
		_, err := fmt.Fprintln(out, "No tickets.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATOR\tASSIGNEE\tREPLIES\tSUBJECT\tUPDATED")
	for _, t := range tickets {
		assignee := t.Assignee
		if assignee == "" {
			assignee = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			t.ID, t.Status, t.CreatorNick, assignee, len(t.Replies), t.Subject, biztime.Format(t.UpdatedAt))
	}
	return w.Flush()
}
