package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"adaptive-quiz-service/internal/domain"
	"github.com/spf13/cobra"
)

func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var (
		subject string
		tier    int
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard for a subject and tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseTier(tier)
			if err != nil {
				return err
			}
			return withRuntime(cmd, *configPath, func(rt *runtime) error {
				entries, err := rt.service.Leaderboard(cmd.Context(), subject, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", subject, t.Name())
				return printLeaderboard(cmd.OutOrStdout(), entries, "")
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "History", "subject")
	cmd.Flags().IntVar(&tier, "tier", int(domain.TierCollege), "tier 1-5")
	return cmd
}

// printLeaderboard renders a Rank/Name/Score table, marking highlightID.
func printLeaderboard(w io.Writer, entries []domain.LeaderboardEntry, highlightID string) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Rank\tName\tScore\t")
	for i, e := range entries {
		marker := ""
		if highlightID != "" && e.UserID == highlightID {
			marker = "<- you"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d%%\t%s\n", i+1, e.Name, e.Score, marker)
	}
	return tw.Flush()
}
