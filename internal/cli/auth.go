package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/skillpulse/internal/core"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

var (
	authEmail    string
	authPassword string
)

// credentials returns the --password flag, falling back to PULSE_PASSWORD.
func credentials() (string, string) {
	password := authPassword
	if password == "" {
		password = os.Getenv("PULSE_PASSWORD")
	}
	return authEmail, password
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	Long: `Log in with email and password.

The password can be passed with --password or through PULSE_PASSWORD.
The session is kept until "pulse logout".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}
		email, password := credentials()

		login := core.NewLogin(Auth, Logger)
		defer login.Close()
		login.OnAction(core.SubmitLogin{Email: email, Password: password})
		login.Wait()

		state := login.State()
		if err := alertResult(cmd.OutOrStdout(), state.Alert); err != nil {
			return err
		}
		for _, e := range drainEvents(login.Events()) {
			if nav, ok := e.(models.Navigate); ok {
				if _, ok := nav.Route.(models.TaskListRoute); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", state.User)
				}
			}
		}
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long: `Create an account with email and password.

Signing up does not log you in; run "pulse login" afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}
		email, password := credentials()

		login := core.NewLogin(Auth, Logger)
		defer login.Close()
		login.OnAction(core.SubmitSignUp{Email: email, Password: password})
		login.Wait()
		return alertResult(cmd.OutOrStdout(), login.State().Alert)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}

		list := core.NewTaskList(DB, Auth, Logger, PageLimit)
		defer list.Close()
		list.OnAction(core.Logout{})
		list.Wait()
		if err := alertResult(cmd.OutOrStdout(), list.State().Alert); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}

		login := core.NewLogin(Auth, Logger)
		defer login.Close()
		login.OnAction(core.CheckSession{})
		login.Wait()

		state := login.State()
		if err := alertResult(cmd.OutOrStdout(), state.Alert); err != nil {
			return err
		}
		if state.User == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), state.User)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (or set PULSE_PASSWORD)")
		_ = c.MarkFlagRequired("email")
	}
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}
