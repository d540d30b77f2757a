package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs the interactive terminal quiz.
func NewPlayCmd(configPath *string) *cobra.Command {
	var userID, name string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, *configPath, func(rt *runtime) error {
				p := newPlayer(rt.service, cmd.InOrStdin(), cmd.OutOrStdout())
				p.userID, p.name = userID, name
				printBanner(cmd.OutOrStdout())
				return p.run(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to play as (default: a new id)")
	cmd.Flags().StringVar(&name, "name", "", "display name (default: prompt)")
	return cmd
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, figure.NewFigure("QUIZ", "", true).String())
	fmt.Fprintln(w, "======================================================")
	fmt.Fprintln(w, "Adaptive quiz: take an evaluation, pick a level, climb the leaderboard")
	fmt.Fprintln(w)
}

// errQuit is returned when the player closes input mid-game.
var errQuit = errors.New("quit")

// player drives one terminal user through evaluation and quiz sessions.
type player struct {
	service *app.QuizService
	in      *bufio.Scanner
	out     io.Writer
	userID  string
	name    string
}

func newPlayer(service *app.QuizService, in io.Reader, out io.Writer) *player {
	return &player{service: service, in: bufio.NewScanner(in), out: out}
}

func (p *player) run(ctx context.Context) error {
	if p.name == "" {
		name, err := p.prompt("Enter your name: ")
		if err != nil {
			return nil
		}
		p.name = name
	}
	if p.userID == "" {
		p.userID = uuid.NewString()
	}
	fmt.Fprintf(p.out, "Welcome, %s! Your user id is %s\n", p.name, p.userID)

	for {
		err := p.round(ctx)
		if errors.Is(err, errQuit) {
			fmt.Fprintln(p.out, "\nGoodbye!")
			return nil
		}
		if errors.Is(err, domain.ErrNoQuestions) {
			fmt.Fprintln(p.out, "No questions could be prepared for that quiz. Try again later.")
		} else if err != nil {
			return err
		}
		again, err := p.confirm("Play again? [y/N]: ")
		if err != nil || !again {
			fmt.Fprintln(p.out, "Goodbye!")
			return nil
		}
	}
}

// round is one subject choice, an optional evaluation and one tiered quiz.
func (p *player) round(ctx context.Context) error {
	subject, err := p.chooseSubject()
	if err != nil {
		return err
	}

	recommended := domain.TierCollege
	evaluate, err := p.confirm("Take the evaluation quiz first? [y/N]: ")
	if err != nil {
		return err
	}
	if evaluate {
		res, err := p.playSession(ctx, func() (app.Started, error) {
			return p.service.StartEvaluation(ctx, p.userID, p.name, subject)
		})
		if err != nil {
			return err
		}
		recommended = res.RecommendedTier
		fmt.Fprintf(p.out, "\nEvaluation score: %d%%. Recommended level: %s\n", res.Score, recommended.Name())
	}

	tier, err := p.chooseTier(recommended)
	if err != nil {
		return err
	}
	res, err := p.playSession(ctx, func() (app.Started, error) {
		return p.service.StartQuiz(ctx, p.userID, p.name, subject, tier)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "\nFinal score: %d%% (%d/%d correct)\n\n", res.Score, res.Correct, res.Total)
	fmt.Fprintf(p.out, "Leaderboard - %s, %s\n", subject, tier.Name())
	return printLeaderboard(p.out, res.Leaderboard, p.userID)
}

func (p *player) playSession(ctx context.Context, start func() (app.Started, error)) (app.Result, error) {
	fmt.Fprintln(p.out, "\nPreparing questions...")
	started, err := start()
	if err != nil {
		return app.Result{}, err
	}
	session := started.Session
	if started.Shortfall > 0 {
		fmt.Fprintf(p.out, "Only %d questions are available right now.\n", len(session.Questions()))
	}

	for {
		q, index, ok := session.Current()
		if !ok {
			break
		}
		total := len(session.Questions())
		fmt.Fprintf(p.out, "\nQuestion %d/%d  %s\n%s\n", index+1, total, stars(q.Difficulty), q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(p.out, "  %c) %s\n", 'A'+i, opt)
		}

		choice, err := p.chooseOption(q)
		if err != nil {
			p.service.Leave(ctx, session.ID())
			return app.Result{}, err
		}
		ans, err := p.service.Answer(ctx, session.ID(), choice)
		if err != nil {
			return app.Result{}, err
		}
		if ans.Correct {
			fmt.Fprintln(p.out, "Correct!")
		} else {
			fmt.Fprintf(p.out, "Incorrect. The correct answer is: %s\n", ans.Question.CorrectAnswer)
		}
		fmt.Fprintf(p.out, "Explanation: %s\nConcept: %s\n", ans.Question.Explanation, ans.Question.Concept)
	}
	return p.service.Finish(ctx, session.ID())
}

func (p *player) chooseSubject() (string, error) {
	fmt.Fprintln(p.out, "\nSubjects:")
	for i, s := range domain.DefaultSubjects {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, s)
	}
	for {
		line, err := p.prompt("Choose a subject (number or name): ")
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(line); err == nil {
			if n >= 1 && n <= len(domain.DefaultSubjects) {
				return domain.DefaultSubjects[n-1], nil
			}
			fmt.Fprintln(p.out, "No such subject.")
			continue
		}
		if line != "" {
			return line, nil
		}
	}
}

func (p *player) chooseTier(recommended domain.Tier) (domain.Tier, error) {
	fmt.Fprintln(p.out, "\nLevels:")
	for _, t := range domain.Tiers() {
		fmt.Fprintf(p.out, "  %d. %s\n", int(t), t.Name())
	}
	for {
		line, err := p.prompt(fmt.Sprintf("Choose a level [%d]: ", int(recommended)))
		if err != nil {
			return 0, err
		}
		if line == "" {
			return recommended, nil
		}
		if n, err := strconv.Atoi(line); err == nil {
			if t, err := domain.ParseTier(n); err == nil {
				return t, nil
			}
		} else if t, err := domain.TierFromName(line); err == nil {
			return t, nil
		}
		fmt.Fprintln(p.out, "Pick a level from 1 to 5.")
	}
}

// chooseOption accepts a letter, a 1-based number or the option text.
func (p *player) chooseOption(q domain.Question) (string, error) {
	for {
		line, err := p.prompt("Your answer: ")
		if err != nil {
			return "", err
		}
		if opt, ok := parseOption(q.Options, line); ok {
			return opt, nil
		}
		fmt.Fprintf(p.out, "Answer with A-%c.\n", 'A'+len(q.Options)-1)
	}
}

func parseOption(options []string, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if len(input) == 1 {
		c := strings.ToUpper(input)[0]
		if c >= 'A' && int(c-'A') < len(options) {
			return options[c-'A'], true
		}
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	for _, opt := range options {
		if input != "" && strings.EqualFold(opt, input) {
			return opt, true
		}
	}
	return "", false
}

func (p *player) confirm(label string) (bool, error) {
	line, err := p.prompt(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *player) prompt(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func stars(d domain.Difficulty) string {
	n := d.Stars()
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
