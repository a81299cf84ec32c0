package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"socialbot-gateway/pkg/models"
)

var (
	usageDays  int
	txType     string
	txPage     int
	unreadOnly bool
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Show credit balance and usage",
}

var creditsBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the current balance and recent usage",
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if err := app.Credits.Load(ctx, usageDays); err != nil {
			return err
		}
		b := app.Credits.Balance()
		u := app.Credits.Usage()
		w := newTable()
		fmt.Fprintf(w, "Balance:\t%d\n", b.Balance)
		fmt.Fprintf(w, "Lifetime added:\t%d\n", b.LifetimeAdded)
		fmt.Fprintf(w, "Lifetime spent:\t%d\n", b.LifetimeSpent)
		fmt.Fprintf(w, "Spent last %d days:\t%d\n", u.Days, u.TotalCredits)
		for _, bucket := range u.ByActionType {
			fmt.Fprintf(w, "  %s\t%d\n", bucket.ActionType, bucket.Credits)
		}
		return w.Flush()
	}),
}

var creditsTransactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List credit transactions",
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		txs, page, err := app.Client.CreditTransactions(ctx, models.TransactionListParams{
			Type: models.CreditTransactionType(txType),
			Page: txPage,
		})
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "WHEN\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
		for _, tx := range txs {
			fmt.Fprintf(w, "%s\t%s\t%+d\t%d\t%s\n", tx.CreatedAt.Local().Format("2006-01-02 15:04"), tx.Type, tx.Amount, tx.BalanceAfter, tx.Description)
		}
		if page != nil {
			fmt.Fprintf(w, "\npage %d of %d\n", page.Page, page.TotalPages)
		}
		return w.Flush()
	}),
}

var creditsPricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Show the credit cost of each AI tier",
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		p, err := app.Client.Pricing(ctx)
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintf(w, "AI standard:\t%d\n", p.AIStandard)
		fmt.Fprintf(w, "AI with knowledge:\t%d\n", p.AIKnowledge)
		fmt.Fprintf(w, "AI full context:\t%d\n", p.AIFullContext)
		fmt.Fprintf(w, "Own model (BYOM):\t%d\n", p.BYOMInfra)
		return w.Flush()
	}),
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List and mark notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if err := app.Notifications.Load(ctx); err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "ID\t\tTYPE\tTITLE\tWHEN")
		for _, n := range app.Notifications.Items() {
			if unreadOnly && n.Read {
				continue
			}
			mark := " "
			if !n.Read {
				mark = "*"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", n.ID, mark, n.Type, n.Title, n.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(w, "\n%d unread\n", app.Notifications.Unread())
		return w.Flush()
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>...",
	Short: "Mark notifications read",
	Args:  cobra.MinimumNArgs(1),
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		ids := make([]uint, 0, len(args))
		for _, a := range args {
			n, err := strconv.ParseUint(a, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid notification id %q", a)
			}
			ids = append(ids, uint(n))
		}
		if err := app.Notifications.Load(ctx); err != nil {
			return err
		}
		return app.Notifications.MarkRead(ctx, ids)
	}),
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification read",
	RunE: authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		if err := app.Notifications.Load(ctx); err != nil {
			return err
		}
		return app.Notifications.MarkAllRead(ctx)
	}),
}

func init() {
	creditsBalanceCmd.Flags().IntVar(&usageDays, "days", 30, "Usage window in days")
	creditsTransactionsCmd.Flags().StringVar(&txType, "type", "", "Filter by type (usage, topup, refund, adjustment)")
	creditsTransactionsCmd.Flags().IntVar(&txPage, "page", 1, "Page number")
	creditsCmd.AddCommand(creditsBalanceCmd, creditsTransactionsCmd, creditsPricingCmd)

	notificationsListCmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")
	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd, notificationsReadAllCmd)
}
