package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vytor/cftracker/internal/analysis"
	"github.com/vytor/cftracker/internal/app"
	"github.com/vytor/cftracker/internal/codeforces"
	"github.com/vytor/cftracker/internal/errors"
	"github.com/vytor/cftracker/internal/session"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var (
		sortBy string
		cached bool
	)
	cmd := &cobra.Command{
		Use:   "summary <handle>",
		Short: "Fetch a handle and print its statistics and upsolve list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.Session.Restore(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			ctx := cmd.Context()
			if !cached {
				ctx = codeforces.Fresh(ctx)
			}
			if err := a.Session.Fetch(ctx, args[0]); err != nil {
				return fmt.Errorf("fetch %s: %s", args[0], errors.Message(err, "Failed to fetch user data"))
			}
			printSummary(cmd.OutOrStdout(), a.Session.Snapshot(), sortBy)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", analysis.SortRecent, "upsolve order: recent, rating or contest")
	cmd.Flags().BoolVar(&cached, "cached", false, "accept upstream results from the cache (REDIS_URL)")
	return cmd
}

func printSummary(w io.Writer, snap session.Snapshot, sortBy string) {
	p := snap.Profile
	fmt.Fprintf(w, "%s (%s)\n", p.Handle, rankOrUnrated(p.Rank))
	fmt.Fprintf(w, "Rating:      %d (max %d)\n", p.Rating, p.MaxRating)
	fmt.Fprintf(w, "Solved:      %d\n", snap.Summary.TotalSolved)
	fmt.Fprintf(w, "Attempted:   %d\n", snap.Summary.TotalAttempted)
	fmt.Fprintf(w, "Submissions: %d (%d%% accepted)\n", snap.Stats.Total, snap.Stats.Rate)

	if len(snap.Tags) > 0 {
		fmt.Fprintln(w, "\nTop tags:")
		for _, t := range snap.Tags {
			fmt.Fprintf(w, "  %-28s %d\n", t.Tag, t.Count)
		}
	}

	if len(snap.Difficulty) > 0 {
		fmt.Fprintln(w, "\nSolved by difficulty:")
		for _, d := range snap.Difficulty {
			fmt.Fprintf(w, "  %-6d %d\n", d.Rating, d.Count)
		}
	}

	upsolve := analysis.SortUpsolve(snap.Upsolve, sortBy)
	fmt.Fprintf(w, "\nUpsolve (%d):\n", len(upsolve))
	for _, e := range upsolve {
		verdicts := make([]string, len(e.Verdicts))
		for i, v := range e.Verdicts {
			verdicts[i] = string(v)
		}
		rating := "-"
		if e.Problem.RatingValue() > 0 {
			rating = strconv.Itoa(e.Problem.RatingValue())
		}
		fmt.Fprintf(w, "  %-8s %-5s %s [%s]\n", e.Key(), rating, e.Problem.Name, strings.Join(verdicts, ", "))
		if e.Notes != "" {
			fmt.Fprintf(w, "           note: %s\n", e.Notes)
		}
	}
}

func rankOrUnrated(s string) string {
	if s == "" {
		return "unrated"
	}
	return s
}
