package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/config"
	"github.com/abhisek/quizplay/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizplay",
	Short: "Take quizzes from the terminal",
	Long:  "quizplay opens, answers and submits quiz attempts on a Moodle site without leaving the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite journal file (overrides QUIZPLAY_DB env var)")
	pf.String("site", "", "Site URL (overrides QUIZPLAY_SITE_URL)")
	pf.String("token", "", "Web-service token (overrides QUIZPLAY_TOKEN)")
	pf.String("log-level", "", "Log level (overrides QUIZPLAY_LOG_LEVEL)")
	pf.Bool("demo", false, "Use the built-in offline demo quiz")
	pf.String("demo-password", "", "Protect the demo quiz with this password")
	pf.Bool("sequential", false, "Make the demo quiz sequential")
	pf.Int("course", 0, "Course id")
	pf.Int("quiz", 0, "Quiz id")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured QUIZPLAY_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
