package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/quiz"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List your attempts at the quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		q, err := e.gw.GetQuiz(ctx, e.courseID, e.quizID)
		if err != nil {
			return fmt.Errorf("get quiz: %w", err)
		}
		attempts, err := e.gw.GetUserAttempts(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("get attempts: %w", err)
		}

		fmt.Printf("%s (quiz %d)\n", q.Name, q.ID)
		if len(attempts) == 0 {
			fmt.Println("No attempts yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tSTATE\tPAGE\tPAGES")
		for _, a := range attempts {
			fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%d\n", a.Number, a.ID, a.State, a.CurrentPage+1, quiz.PageCount(a.Layout))
		}
		return w.Flush()
	},
}
