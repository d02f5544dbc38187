package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/truccaai/trucca/internal/session"
)

var loginFlags struct {
	clientConfig
	username string
	password string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session locally",
	Long: `Sign in with a dashboard account. The access and refresh tokens are kept
in the local session database until logout or until the server rejects them.
The password is read from --password, TRUCCA_PASSWORD or standard input.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutFlags struct {
	clientConfig
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored tokens",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var refreshFlags struct {
	clientConfig
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Trade the refresh token for a new access token",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

var whoamiFlags struct {
	clientConfig
	local bool
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and session expiry",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, refreshCmd, whoamiCmd)

	addClientFlags(loginCmd, &loginFlags.clientConfig)
	loginCmd.Flags().StringVarP(&loginFlags.username, "username", "u", os.Getenv("TRUCCA_USERNAME"), "account name")
	loginCmd.Flags().StringVarP(&loginFlags.password, "password", "p", "", "password (prefer TRUCCA_PASSWORD or stdin)")

	addClientFlags(logoutCmd, &logoutFlags.clientConfig)
	addClientFlags(refreshCmd, &refreshFlags.clientConfig)

	addClientFlags(whoamiCmd, &whoamiFlags.clientConfig)
	whoamiCmd.Flags().BoolVar(&whoamiFlags.local, "local", false, "only read the stored token, do not call the server")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginFlags.password
	if password == "" {
		password = os.Getenv("TRUCCA_PASSWORD")
	}
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	a, err := loginFlags.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.client.Auth.Login(cmd.Context(), loginFlags.username, password); err != nil {
		return err
	}
	return printSession(cmd, a.client.Session)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := logoutFlags.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.client.Auth.Logout(cmd.Context())
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := refreshFlags.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.client.Auth.Refresh(cmd.Context()); err != nil {
		return err
	}
	return printSession(cmd, a.client.Session)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := whoamiFlags.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.client.Session.Authenticated() {
		return errors.New("not signed in")
	}
	if whoamiFlags.local {
		return printSession(cmd, a.client.Session)
	}

	u, err := a.client.Auth.Profile(cmd.Context())
	if err != nil {
		return err
	}
	printKV(cmd.OutOrStdout(), [][2]string{
		{"id", dash(u.ID.String())},
		{"username", u.Username},
		{"name", dash(u.FullName)},
		{"email", dash(u.Email)},
		{"roles", dash(strings.Join(u.Roles, ", "))},
	})
	return printSession(cmd, a.client.Session)
}

func printSession(cmd *cobra.Command, sess *session.Session) error {
	rows := [][2]string{{"subject", dash(sess.Subject())}}
	exp, err := sess.ExpiresAt()
	switch {
	case errors.Is(err, session.ErrNoExpiry):
		rows = append(rows, [2]string{"expires", "-"})
	case err != nil:
		rows = append(rows, [2]string{"expires", "unknown (" + err.Error() + ")"})
	default:
		left := time.Until(exp).Round(time.Second)
		state := "in " + left.String()
		if left <= 0 {
			state = "expired"
		}
		rows = append(rows, [2]string{"expires", exp.Local().Format("2006-01-02 15:04:05") + " (" + state + ")"})
	}
	printKV(cmd.OutOrStdout(), rows)
	return nil
}
