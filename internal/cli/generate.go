package cli

import (
	"fmt"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewGenerateCmd pre-warms question collections so quizzes start without waiting on generation.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		subject string
		tier    int
		count   int
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill question collections up to a target size",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := generateKeys(subject, tier, all)
			if err != nil {
				return err
			}
			return withRuntime(cmd, *configPath, func(rt *runtime) error {
				for _, key := range keys {
					target := count
					if target <= 0 {
						target = app.MainQuizCount
						if key.IsEvaluation() {
							target = app.EvaluationCount
						}
					}
					inv, err := rt.questions.EnsureInventory(cmd.Context(), key, target)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", key, err)
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), formatInventory(inv))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject to generate for")
	cmd.Flags().IntVar(&tier, "tier", 0, "tier 1-5; 0 fills the evaluation collection")
	cmd.Flags().IntVar(&count, "count", 0, "target collection size (default 10 for evaluation, 20 otherwise)")
	cmd.Flags().BoolVar(&all, "all", false, "fill every default subject at every tier and evaluation")
	return cmd
}

func generateKeys(subject string, tier int, all bool) ([]domain.CollectionKey, error) {
	if all {
		var keys []domain.CollectionKey
		for _, s := range domain.DefaultSubjects {
			keys = append(keys, domain.EvaluationKey(s))
			for _, t := range domain.Tiers() {
				keys = append(keys, domain.QuizKey(s, t))
			}
		}
		return keys, nil
	}
	if subject == "" {
		return nil, fmt.Errorf("--subject is required unless --all is set")
	}
	if tier == 0 {
		return []domain.CollectionKey{domain.EvaluationKey(subject)}, nil
	}
	t, err := domain.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	return []domain.CollectionKey{domain.QuizKey(subject, t)}, nil
}

func formatInventory(inv app.Inventory) string {
	line := fmt.Sprintf("%s: %d questions (batches %d, rejected %d, duplicates %d, failures %d)",
		inv.Key, len(inv.Questions), inv.Batches, inv.Rejected, inv.Duplicates, inv.Failures)
	if inv.Shortfall > 0 {
		line += fmt.Sprintf(", short by %d", inv.Shortfall)
	}
	return line
}
