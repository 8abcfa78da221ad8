package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/starsync/internal/adapters/driving/oauth"
	"github.com/custodia-labs/starsync/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Google account used for export",
	Long: `Sign in to the Google account that owns the export spreadsheet.

starsync uses an installed-app OAuth client. Create one in the Google Cloud
console (application type "Desktop app", Sheets API enabled) and store it:

  starsync settings set oauth.client_id <client id>
  starsync settings set oauth.client_secret <client secret>
  starsync auth login`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google",
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored Google account",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed-in account",
	RunE:  runAuthStatus,
}

var authNoBrowser bool

// openBrowser is replaced in tests.
var openBrowser = oauth.OpenBrowser

func init() {
	authLoginCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "Print the sign-in URL instead of opening it")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if err := requireService(authService, "auth service"); err != nil {
		return err
	}

	open := func(u string) error {
		cmd.Println("Open this URL to sign in:")
		cmd.Println()
		cmd.Printf("  %s\n", u)
		cmd.Println()
		cmd.Println("Waiting for authorisation...")
		if authNoBrowser {
			return nil
		}
		return openBrowser(u)
	}

	status, err := authService.Login(commandContext(cmd), open)
	if errors.Is(err, domain.ErrOAuthNotConfigured) {
		return fmt.Errorf("%w: set oauth.client_id and oauth.client_secret first (see 'starsync auth --help')", err)
	}
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	if status.Account != "" {
		cmd.Printf("Signed in as %s.\n", status.Account)
	} else {
		cmd.Println("Signed in.")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if err := requireService(authService, "auth service"); err != nil {
		return err
	}
	if err := authService.Logout(commandContext(cmd)); err != nil {
		return err
	}
	cmd.Println("Signed out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if err := requireService(authService, "auth service"); err != nil {
		return err
	}

	status, err := authService.Status(commandContext(cmd))
	if err != nil {
		return err
	}
	if !status.Authenticated {
		cmd.Println("Not signed in. Run 'starsync auth login'.")
		return nil
	}

	account := status.Account
	if account == "" {
		account = "(unknown account)"
	}
	cmd.Printf("Signed in as %s\n", account)
	if !status.Expiry.IsZero() {
		cmd.Printf("Access token expires %s\n", status.Expiry.Local().Format(time.DateTime))
	}
	return nil
}
