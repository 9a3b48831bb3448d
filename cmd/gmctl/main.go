package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cl "guildmint/internal/cli"
	"guildmint/internal/config"
	"guildmint/internal/db"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "gmctl",
		Short:        "Guildmint economy admin client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newLoginCmd(&apiBase),
		newBalanceCmd(&apiBase),
		newStatementCmd(&apiBase),
		newStatsCmd(&apiBase),
		newServerStatsCmd(&apiBase),
		newTopCmd(&apiBase),
		newStocksCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newGrantCmd(&apiBase),
		newReleaseCmd(&apiBase),
		newFlushQueueCmd(&apiBase),
		newMigrateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newLoginCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate as admin and save the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptRequired("Admin password")
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			token, err := newClient(apiBase).Login(ctx, password)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{Token: token}); err != nil {
				return err
			}
			printSuccess("Login successful.")
			return nil
		},
	}
}

func newBalanceCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's wallet account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Account(ctx, args[0])
			if err != nil {
				return err
			}
			return renderAccount(out)
		},
	}
}

func newStatementCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "statement <user-id>",
		Short: "Show a user's bank statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Statement(ctx, args[0])
			if err != nil {
				return err
			}
			return renderStatement(out)
		},
	}
}

func newStatsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user-id>",
		Short: "Show a user's full economic profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).UserStats(ctx, args[0])
			if err != nil {
				return err
			}
			return renderUserStats(out)
		},
	}
}

func newServerStatsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server-stats",
		Short: "Show economy-wide totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).ServerStats(ctx)
			if err != nil {
				return err
			}
			return renderServerStats(out)
		},
	}
}

func newTopCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the richest users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).RichList(ctx, limit)
			if err != nil {
				return err
			}
			return renderRichList(out)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of rows")
	return cmd
}

func newStocksCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stocks",
		Short: "List companies and current prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).ListStocks(ctx)
			if err != nil {
				return err
			}
			return renderStocksList(out)
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Show a company's recent price ticks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).StockHistory(ctx, strings.ToUpper(args[0]), limit)
			if err != nil {
				return err
			}
			return renderHistory(out, strings.ToUpper(args[0]))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 12, "number of ticks")
	return cmd
}

func newGrantCmd(apiBase *string) *cobra.Command {
	var reason string
	var offline bool
	cmd := &cobra.Command{
		Use:   "grant <user-id> <amount>",
		Short: "Credit coins to a user (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if offline {
				if err := cl.PushQueue(cl.QueuedCall{
					Method:         "POST",
					Path:           "/v1/admin/grant",
					Body:           map[string]any{"user_id": args[0], "amount": amount, "reason": reason},
					IdempotencyKey: uuid.NewString(),
				}); err != nil {
					return err
				}
				printWarn("Queued offline. Run `gmctl flush-queue` when the API is reachable.")
				return nil
			}
			sess, err := cl.LoadSession()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if _, err := newClient(apiBase).Grant(ctx, sess.Token, args[0], amount, reason); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Granted %s coins to %s.", comma(amount), args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "admin", "ledger reason tag")
	cmd.Flags().BoolVar(&offline, "offline", false, "queue the grant instead of sending it")
	return cmd
}

func newReleaseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "release <user-id>",
		Short: "Release a user from jail (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if _, err := newClient(apiBase).Release(ctx, sess.Token, args[0]); err != nil {
				return err
			}
			printSuccess("Released " + args[0] + ".")
			return nil
		},
	}
}

func newFlushQueueCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-queue",
		Short: "Replay queued offline writes against the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return err
			}
			queue, err := cl.LoadQueue()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Queue is empty.")
				return nil
			}
			client := newClient(apiBase)
			var remaining []cl.QueuedCall
			for _, qc := range queue {
				ctx, cancel := cmdContext(cmd)
				_, err := client.Do(ctx, qc.Method, qc.Path, sess.Token, qc.AsUser, qc.Body, qc.IdempotencyKey)
				cancel()
				if err != nil {
					printError(fmt.Sprintf("%s %s failed: %v", qc.Method, qc.Path, err))
					remaining = append(remaining, qc)
					continue
				}
				printSuccess(fmt.Sprintf("%s %s replayed.", qc.Method, qc.Path))
			}
			if err := cl.SaveQueue(remaining); err != nil {
				return err
			}
			printInfo(fmt.Sprintf("%d replayed, %d remaining.", len(queue)-len(remaining), len(remaining)))
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations against DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
			if url == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			if err := db.Migrate(url); err != nil {
				return err
			}
			printSuccess("Migrations applied.")
			return nil
		},
	}
}
