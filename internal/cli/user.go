package cli

import (
	"errors"
	"fmt"
	"sort"

	"adaptive-quiz-service/internal/domain"
	"github.com/spf13/cobra"
)

func NewUserCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show a user's latest grade and score per subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, *configPath, func(rt *runtime) error {
				user, err := rt.service.User(cmd.Context(), args[0])
				if errors.Is(err, domain.ErrUserNotFound) {
					return fmt.Errorf("no user with id %q", args[0])
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", user.Name, user.UserID)
				subjects := append([]string{}, user.Subjects...)
				sort.Strings(subjects)
				for _, s := range subjects {
					fmt.Fprintf(out, "  %-12s %-14s %3d%%\n", s, user.Grades[s], user.Scores[s])
				}
				return nil
			})
		},
	}
}
