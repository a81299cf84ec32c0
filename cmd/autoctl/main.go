// Command autoctl drives the automation API from a terminal: login, build
// automations from YAML drafts, and follow credits, notifications and voice
// DNA analysis.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"socialbot-gateway/internal/client"
	"socialbot-gateway/internal/database"
	"socialbot-gateway/internal/store"
)

var (
	apiURL    string
	token     string
	sessionDB string
	verbose   bool
	timeout   time.Duration

	app *store.AppState
)

var rootCmd = &cobra.Command{
	Use:           "autoctl",
	Short:         "Manage social media automations",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return initApp()
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr("AUTOCTL_API_URL", "http://localhost:8080/api/v1"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("AUTOCTL_TOKEN"), "Bearer token (or set AUTOCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&sessionDB, "session-db", envOr("AUTOCTL_SESSION_DB", defaultSessionDB()), "Path of the local session database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall command timeout")

	rootCmd.AddCommand(loginCmd, logoutCmd)
	rootCmd.AddCommand(automationsCmd, creditsCmd, notificationsCmd, voiceDNACmd, memoryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initApp() error {
	if err := os.MkdirAll(filepath.Dir(sessionDB), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	db, err := database.OpenSessionDB(sessionDB)
	if err != nil {
		return err
	}
	app = store.NewAppState(client.New(apiURL, token), store.NewSessionRepository(db), store.LogToaster{})
	return nil
}

// authed runs fn with a timeout after checking the stored session.
func authed(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := app.RequireSession(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return fn(ctx, cmd, args)
	}
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the token and start a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return fmt.Errorf("no token given, pass --token or set AUTOCTL_TOKEN")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		user, err := app.Login(ctx, token)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "autoctl-session.db"
	}
	return filepath.Join(home, ".autoctl", "session.db")
}
