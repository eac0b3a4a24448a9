package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/api/gmail/v1"

	"github.com/ayane-dev/sbireport/pkg/client"
	"github.com/ayane-dev/sbireport/pkg/config"
)

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Authenticate with Google",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(setupForce)
	},
}

func init() {
	setupCmd.Flags().BoolVar(&setupForce, "force", false, "re-authenticate even if a token exists")
}

func runSetup(force bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	fmt.Println("=== sbireport Setup ===")
	fmt.Println()

	if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found: %s\n\nTo get your credentials:\n"+
			"1. Go to https://console.cloud.google.com/apis/credentials\n"+
			"2. Create an OAuth 2.0 Client ID (Desktop application)\n"+
			"3. Download the JSON file and save it as '%s'", cfg.CredentialsFile, cfg.CredentialsFile)
	}

	if !force {
		if _, err := os.Stat(cfg.TokenFile); err == nil {
			fmt.Printf("Already authenticated! Token file exists: %s\n", cfg.TokenFile)
			fmt.Println()
			fmt.Println("To re-authenticate, run: sbireport setup --force")
			return nil
		}
	}

	if force {
		if err := os.Remove(cfg.TokenFile); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove existing token", "error", err)
		}
		fmt.Println("Forcing re-authentication...")
		fmt.Println()
	}

	fmt.Println("This will set up OAuth authentication with Google.")
	fmt.Println()
	fmt.Println("Required permissions:")
	fmt.Println("  - Gmail: Read emails (notification emails are never modified)")
	fmt.Println()
	fmt.Println("Starting authentication...")
	fmt.Println()

	_, err = client.New(
		cfg.CredentialsFile,
		client.NewFileStore(cfg.TokenFile),
		gmail.GmailReadonlyScope,
	)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Setup Complete ===")
	fmt.Println()
	fmt.Printf("Token saved to: %s\n", cfg.TokenFile)
	fmt.Println()
	fmt.Println("Run 'sbireport run' to generate your first report.")

	return nil
}
