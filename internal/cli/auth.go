package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	loginToken     string
	loginServerURL string
	loginProfile   string
	rememberFlag   bool
	forgetFlag     bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your gitseek session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to a gitseek server",
	Long: `Log in to a gitseek server.

Login happens through GitHub in the browser. Without --token this prints
the login URL; after completing it, copy the session cookie value and run
the command again with --token to store it in a profile.`,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authRememberCmd = &cobra.Command{
	Use:   "remember",
	Short: "Answer the remember-me prompt",
	Args:  cobra.NoArgs,
	RunE:  runAuthRemember,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

func init() {
	authLoginCmd.Flags().StringVar(&loginToken, "token", "", "session cookie value from the browser")
	authLoginCmd.Flags().StringVar(&loginServerURL, "server", "http://localhost:5000", "gitseek server URL")
	authLoginCmd.Flags().StringVar(&loginProfile, "name", "local", "profile name to store the session under")

	authRememberCmd.Flags().BoolVar(&rememberFlag, "yes", false, "keep the session for the extended lifetime")
	authRememberCmd.Flags().BoolVar(&forgetFlag, "no", false, "keep the short session lifetime")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRememberCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if loginToken == "" {
		fmt.Printf("Open %s/auth/github in your browser to log in with GitHub.\n", loginServerURL)
		fmt.Printf("Then store the session with:\n\n")
		fmt.Printf("  %s auth login --server %s --token <session-cookie-value>\n", applicationName, loginServerURL)
		return nil
	}

	config, err := LoadConfig()
	if err != nil {
		return err
	}

	profile := Profile{
		Name:         loginProfile,
		ServerURL:    loginServerURL,
		SessionToken: loginToken,
	}

	// Verify the token before persisting it.
	client := NewAPIClientFromProfile(profile)
	user, err := client.CurrentUser(cmd.Context())
	if err != nil {
		return fmt.Errorf("session verification failed: %w", err)
	}

	SetProfile(config, profile)
	if err := SaveConfig(config); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (profile %q)\n", user.Username, profile.Name)
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	profile := ActiveProfile(config)
	client := NewAPIClientFromProfile(profile)

	user, err := client.CurrentUser(cmd.Context())
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			fmt.Printf("Not logged in to %s\n", profile.ServerURL)
			return nil
		}
		return err
	}

	if err := RenderUser(user, viper.GetString("output")); err != nil {
		return err
	}

	showPrompt, err := client.CheckPrompt(cmd.Context())
	if err == nil && showPrompt {
		fmt.Printf("The server is waiting for a remember-me answer; run %q.\n", applicationName+" auth remember --yes")
	}
	return nil
}

func runAuthRemember(cmd *cobra.Command, _ []string) error {
	if rememberFlag && forgetFlag {
		return fmt.Errorf("--yes and --no are mutually exclusive")
	}

	config, err := LoadConfig()
	if err != nil {
		return err
	}
	client := NewAPIClientFromProfile(ActiveProfile(config))

	// No flag at all dismisses the prompt, matching the web client closing
	// the dialog without answering.
	var choice *bool
	if rememberFlag {
		v := true
		choice = &v
	} else if forgetFlag {
		v := false
		choice = &v
	}

	expiresAt, err := client.Remember(cmd.Context(), choice)
	if err != nil {
		return fmt.Errorf("failed to resolve the prompt: %w", err)
	}

	fmt.Printf("Session now expires at %s\n", expiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	profile := ActiveProfile(config)
	client := NewAPIClientFromProfile(profile)

	if err := client.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	if stored, ok := config.Profiles[profile.Name]; ok {
		stored.SessionToken = ""
		config.Profiles[profile.Name] = stored
		if err := SaveConfig(config); err != nil {
			return err
		}
	}

	fmt.Println("Logged out.")
	return nil
}
