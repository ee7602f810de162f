package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/tutorhub/tutorhub-admin/internal/audit"
	"github.com/tutorhub/tutorhub-admin/internal/config"
	"github.com/tutorhub/tutorhub-admin/internal/credentials"
	"github.com/tutorhub/tutorhub-admin/internal/logging"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
	"github.com/tutorhub/tutorhub-admin/internal/moderation"
	"github.com/tutorhub/tutorhub-admin/internal/pagination"
)

var (
	moderatePage     int
	moderatePageSize int
	moderateOperator string
)

var moderateCmd = &cobra.Command{
	Use:   "moderate",
	Short: "Review and act on marketplace moderation queues.",
}

var moderateStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print platform statistics.",
	Args:  cobra.NoArgs,
	RunE: withController(func(ctx context.Context, cmd *cobra.Command, ctrl *moderation.Controller, cfg config.Config, args []string) error {
		return printStats(ctx, ctrl, cmd.OutOrStdout())
	}),
}

var moderatePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List gigs awaiting approval.",
	Args:  cobra.NoArgs,
	RunE: withController(func(ctx context.Context, cmd *cobra.Command, ctrl *moderation.Controller, cfg config.Config, args []string) error {
		return printPending(ctx, ctrl, cmd.OutOrStdout(), moderatePage, pageSizeFlag(cfg))
	}),
}

var moderateReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List abuse reports.",
	Args:  cobra.NoArgs,
	RunE: withController(func(ctx context.Context, cmd *cobra.Command, ctrl *moderation.Controller, cfg config.Config, args []string) error {
		return printReports(ctx, ctrl, cmd.OutOrStdout(), moderatePage, pageSizeFlag(cfg))
	}),
}

var moderateApproveCmd = &cobra.Command{
	Use:   "approve <gig-id>",
	Short: "Approve a pending gig.",
	Args:  cobra.ExactArgs(1),
	RunE: withController(func(ctx context.Context, cmd *cobra.Command, ctrl *moderation.Controller, cfg config.Config, args []string) error {
		return actionResult(ctrl.Approve(ctx, args[0]))
	}),
}

var moderateBlockCmd = &cobra.Command{
	Use:   "block <user-id>",
	Short: "Block a reported user.",
	Args:  cobra.ExactArgs(1),
	RunE: withController(func(ctx context.Context, cmd *cobra.Command, ctrl *moderation.Controller, cfg config.Config, args []string) error {
		return actionResult(ctrl.Block(ctx, args[0]))
	}),
}

var moderateDeleteReviewCmd = &cobra.Command{
	Use:   "delete-review <review-id>",
	Short: "Delete a review.",
	Args:  cobra.ExactArgs(1),
	RunE: withController(func(ctx context.Context, cmd *cobra.Command, ctrl *moderation.Controller, cfg config.Config, args []string) error {
		return actionResult(ctrl.DeleteReview(ctx, args[0]))
	}),
}

func init() {
	moderateCmd.PersistentFlags().StringVar(&moderateOperator, "operator", "", "operator name recorded in the audit trail (default $USER)")
	for _, cmd := range []*cobra.Command{moderatePendingCmd, moderateReportsCmd} {
		cmd.Flags().IntVar(&moderatePage, "page", 1, "page to show")
		cmd.Flags().IntVar(&moderatePageSize, "page-size", 0, "rows per page (default PAGE_SIZE)")
	}
	moderateCmd.AddCommand(moderateStatsCmd, moderatePendingCmd, moderateReportsCmd, moderateApproveCmd, moderateBlockCmd, moderateDeleteReviewCmd)
}

type controllerRun func(ctx context.Context, cmd *cobra.Command, ctrl *moderation.Controller, cfg config.Config, args []string) error

// withController builds a controller from the environment for the duration of
// one command. Actions are audited when DATABASE_URL is set.
func withController(run controllerRun) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		client, err := marketplace.New(cfg.MarketplaceURL, nil, cfg.MarketplaceTimeout)
		if err != nil {
			return err
		}
		if err := credentials.Install(client, cfg); err != nil {
			return err
		}

		var recorder audit.Recorder = audit.Nop{}
		if cfg.DatabaseURL != "" {
			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			store, err := audit.NewPostgresStore(pool)
			if err != nil {
				return err
			}
			recorder = store
		}

		ctrl, err := moderation.New(moderation.Options{
			Backend:  client,
			Notifier: cliNotifier{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()},
			Recorder: recorder,
			Operator: cliOperator(),
			Logger:   logging.Discard(),
		})
		if err != nil {
			return err
		}
		return run(ctx, cmd, ctrl, cfg, args)
	}
}

// pageSizeFlag returns --page-size, or PAGE_SIZE when the flag is unset.
func pageSizeFlag(cfg config.Config) int {
	if moderatePageSize > 0 {
		return moderatePageSize
	}
	return cfg.PageSize
}

func cliOperator() string {
	if op := strings.TrimSpace(moderateOperator); op != "" {
		return op
	}
	if user := strings.TrimSpace(os.Getenv("USER")); user != "" {
		return "cli:" + user
	}
	return "cli"
}

// cliNotifier prints controller notifications, failures to stderr.
type cliNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n cliNotifier) Notify(_ context.Context, note moderation.Notification) {
	w := n.out
	if note.Level == moderation.LevelError {
		w = n.errOut
	}
	fmt.Fprintf(w, "%s: %s\n", note.Title, note.Message)
}

// actionResult maps an action error to an exit status. The notifier has
// already reported every failure that reached the backend.
func actionResult(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, marketplace.ErrInvalidID):
		return &exitError{code: exitUsage, err: err}
	case errors.Is(err, marketplace.ErrUnauthorized), errors.Is(err, marketplace.ErrNoToken):
		return &exitError{code: exitUnauthorized, err: fmt.Errorf("marketplace rejected the credentials: %w", err)}
	default:
		return silentExit(exitFailure, err)
	}
}

// loadResult maps a load error to an exit status. Loads do not notify, so the
// error is printed on exit.
func loadResult(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, marketplace.ErrUnauthorized), errors.Is(err, marketplace.ErrNoToken):
		return &exitError{code: exitUnauthorized, err: fmt.Errorf("marketplace rejected the credentials: %w", err)}
	default:
		return &exitError{code: exitFailure, err: err}
	}
}

func loadCollection(ctx context.Context, ctrl *moderation.Controller, coll moderation.Collection) error {
	return loadResult(ctrl.Reload(ctx, coll))
}

func printStats(ctx context.Context, ctrl *moderation.Controller, out io.Writer) error {
	if err := loadCollection(ctx, ctrl, moderation.CollectionStats); err != nil {
		return err
	}
	stats := ctrl.Snapshot().Stats
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, key := range stats.Keys() {
		fmt.Fprintf(tw, "%s\t%s\n", key, stats.Value(key))
	}
	return tw.Flush()
}

func printPending(ctx context.Context, ctrl *moderation.Controller, out io.Writer, page, pageSize int) error {
	if err := loadCollection(ctx, ctrl, moderation.CollectionPending); err != nil {
		return err
	}
	gigs := ctrl.Snapshot().Pending
	if len(gigs) == 0 {
		fmt.Fprintln(out, "No gigs are waiting for approval.")
		return nil
	}
	page, totalPages, _ := pagination.Paginate(int64(len(gigs)), page, pageSize)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBJECT\tSUBMITTED BY")
	for _, gig := range pagination.Slice(gigs, page, pageSize) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", gig.ID, gig.Title, dash(gig.Subject), dash(gig.SubmitterName))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return printPageStrip(out, page, totalPages, len(gigs))
}

func printReports(ctx context.Context, ctrl *moderation.Controller, out io.Writer, page, pageSize int) error {
	if err := loadCollection(ctx, ctrl, moderation.CollectionReports); err != nil {
		return err
	}
	reports := ctrl.Snapshot().Reports
	if len(reports) == 0 {
		fmt.Fprintln(out, "No open abuse reports.")
		return nil
	}
	page, totalPages, _ := pagination.Paginate(int64(len(reports)), page, pageSize)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREPORTED USER\tTARGET\tMESSAGE")
	for _, report := range pagination.Slice(reports, page, pageSize) {
		target := "-"
		if report.TargetType != "" {
			target = report.TargetType + "#" + dash(report.TargetID.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", report.ID, dash(report.ReportedActorID.String()), target, oneLine(report.Message))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return printPageStrip(out, page, totalPages, len(reports))
}

// printPageStrip renders the navigation window as "page 3 of 9: 1 2 [3] 4 5".
func printPageStrip(out io.Writer, page, totalPages, total int) error {
	if totalPages <= 1 {
		return nil
	}
	controls := pagination.NewControls(page, totalPages, pagination.DefaultMaxVisiblePages)
	parts := make([]string, 0, len(controls.Pages))
	for _, ctrl := range controls.Pages {
		label := strconv.Itoa(ctrl.Page)
		if ctrl.Active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	_, err := fmt.Fprintf(out, "\npage %d of %d (%d total): %s\n", controls.CurrentPage, controls.TotalPages, total, strings.Join(parts, " "))
	return err
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 80 {
		return string([]rune(s)[:77]) + "..."
	}
	return dash(s)
}
