package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"budget/client"
	"budget/config"
	"budget/logger"
	"budget/models"

	"github.com/spf13/cobra"
)

type watchOptions struct {
	month    string
	username string
	password string
	interval time.Duration
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	wo := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a month's balance and transactions on a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), opts.configPath, wo)
		},
	}

	cmd.Flags().StringVarP(&wo.month, "month", "m", "", "month to follow as YYYY-MM (default current month)")
	cmd.Flags().StringVarP(&wo.username, "username", "u", "", "log in with this user instead of client.token")
	cmd.Flags().StringVar(&wo.password, "password", "", "password for --username")
	cmd.Flags().DurationVar(&wo.interval, "interval", 0, "poll interval (default client.poll_interval)")

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, configPath string, wo *watchOptions) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log, os.Stderr)

	month := models.CurrentMonth()
	if wo.month != "" {
		if month, err = models.ParseMonth(wo.month); err != nil {
			return err
		}
	}
	interval := wo.interval
	if interval <= 0 {
		interval = cfg.Client.PollInterval
	}

	c := client.New(cfg.Client.BaseURL, client.WithToken(cfg.Client.Token))
	if wo.username != "" {
		if _, err := c.Login(ctx, wo.username, wo.password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	v := &watchView{out: out, month: month}
	pollers := []*client.Poller{
		c.SubscribeBalance(month, interval, v.setBalance, log),
		c.SubscribeTransactions(month, interval, v.setTransactions, log),
	}
	for _, p := range pollers {
		if err := p.Start(ctx); err != nil {
			return err
		}
	}

	<-ctx.Done()
	for _, p := range pollers {
		p.Stop()
	}
	return nil
}

// watchView redraws the whole month whenever either poller delivers.
type watchView struct {
	mu      sync.Mutex
	out     io.Writer
	month   models.Month
	balance *models.MonthlyBalance
	txs     []models.Transaction
}

func (v *watchView) setBalance(b *models.MonthlyBalance) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balance = b
	v.render()
}

func (v *watchView) setTransactions(txs []models.Transaction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.txs = txs
	v.render()
}

func (v *watchView) render() {
	w := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "== %s ==\n", v.month)
	if v.balance == nil {
		fmt.Fprintln(w, "no balance set")
	} else {
		fmt.Fprintf(w, "initial\t%s\n", v.balance.InitialBalance.StringFixed(2))
		fmt.Fprintf(w, "income\t%s\n", v.balance.TotalIncome.StringFixed(2))
		fmt.Fprintf(w, "expense\t%s\n", v.balance.TotalExpense.StringFixed(2))
		fmt.Fprintf(w, "current\t%s\n", v.balance.CurrentBalance.StringFixed(2))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, tx := range v.txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", tx.Date, tx.Type, tx.Category, tx.Amount.StringFixed(2), tx.Description)
	}
	w.Flush()
}
