package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/batchclock/internal/report"
	"github.com/bft-labs/batchclock/pkg/batch"
)

func newCurrentCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the batch collecting orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if at == "" {
				return report.Write(cmd.OutOrStdout(), a.cfg.Output, report.For(batch.Now(), report.RoleCollecting))
			}
			t, err := parseInstant(at)
			if err != nil {
				return err
			}
			id, err := batch.Current(t)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), a.cfg.Output, report.For(id, report.RoleCollecting))
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant to evaluate (RFC3339 or unix seconds; default now)")
	return cmd
}

func newSolvingCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "solving",
		Short: "Show the batch currently being solved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now()
			if at != "" {
				var err error
				if t, err = parseInstant(at); err != nil {
					return err
				}
			}
			id, err := batch.CurrentlyBeingSolved(t)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), a.cfg.Output, report.For(id, report.RoleSolving))
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant to evaluate (RFC3339 or unix seconds; default now)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show the windows of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id batch.ID
			if err := id.UnmarshalText([]byte(args[0])); err != nil {
				return err
			}
			if id > batch.MaxID {
				return fmt.Errorf("batch %s is past the largest representable batch %s", id, batch.MaxID)
			}
			return report.Write(cmd.OutOrStdout(), a.cfg.Output, report.For(id, ""))
		},
	}
}

func newFromTimestampCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "from-timestamp <unix-seconds>",
		Short: "Show the batch containing a unix timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse timestamp: %w", err)
			}
			id := batch.FromTimestamp(ts)
			if id > batch.MaxID {
				return fmt.Errorf("timestamp %d is past the representable time range", ts)
			}
			return report.Write(cmd.OutOrStdout(), a.cfg.Output, report.For(id, ""))
		},
	}
}

// parseInstant accepts RFC3339 (with optional fractional seconds) or integer
// unix seconds, which may be negative.
func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: want RFC3339 or unix seconds", s)
	}
	return t, nil
}
