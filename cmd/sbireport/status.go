package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ayane-dev/sbireport/pkg/client"
	"github.com/ayane-dev/sbireport/pkg/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check configuration and authentication",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

func runStatus() error {
	fmt.Println("=== sbireport Status ===")
	fmt.Println()

	allGood := true

	cfg, err := config.Load(configPath)
	fmt.Printf("Config (%s): ", configPath)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return err
	}
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		fmt.Println("⚠ No file, using environment and defaults")
	} else {
		fmt.Println("✓ Loaded")
	}

	fmt.Printf("Credentials file (%s): ", cfg.CredentialsFile)
	if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
		fmt.Println("✗ Not found (run 'sbireport setup' after downloading it)")
		allGood = false
	} else {
		fmt.Println("✓ Found")
	}

	fmt.Printf("OAuth token (%s): ", cfg.TokenFile)
	token, err := checkToken(cfg.TokenFile)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		allGood = false
	} else if token.Expiry.Before(time.Now()) {
		fmt.Println("⚠ Expired (will refresh on next run)")
	} else {
		fmt.Printf("✓ Valid (expires: %s)\n", token.Expiry.Format(time.RFC3339))
	}

	fmt.Printf("Output directory (%s): ", cfg.OutputDir)
	if info, err := os.Stat(cfg.OutputDir); err == nil && info.IsDir() {
		fmt.Println("✓ Exists")
	} else {
		fmt.Println("⚠ Will be created on first run")
	}

	if cfg.PostgresEnabled() {
		fmt.Printf("PostgreSQL: configured (%s:%d/%s)\n", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDatabase)
	} else {
		fmt.Println("PostgreSQL: not configured (archival disabled)")
	}

	if allGood && token != nil {
		fmt.Println()
		fmt.Print("Gmail API: ")
		if err := testGmailAPI(cfg); err != nil {
			fmt.Printf("✗ %v\n", err)
			allGood = false
		} else {
			fmt.Println("✓ Connected")
		}
	}

	fmt.Println()
	if allGood {
		fmt.Println("Status: ✓ Ready to run")
		fmt.Println()
		fmt.Println("Run 'sbireport run' to generate reports.")
	} else {
		fmt.Println("Status: ✗ Issues detected")
		fmt.Println()
		fmt.Println("Fix the issues above, then run 'sbireport status' again.")
	}

	return nil
}

func checkToken(tokenPath string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not found (run 'sbireport setup')")
		}
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid format")
	}

	return &token, nil
}

func testGmailAPI(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	httpClient, err := client.New(
		cfg.CredentialsFile,
		client.NewFileStore(cfg.TokenFile),
		gmail.GmailReadonlyScope,
	)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	// Listing labels is the cheapest authenticated call.
	_, err = svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("API call failed: %w", err)
	}

	return nil
}
