// Command login runs the device-code sign-in from a terminal and writes the
// credential cache used by the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobdesk/internal/auth"
	"jobdesk/internal/config"
	"jobdesk/internal/logging"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	check := flag.Bool("check", false, "only report the state of the cached credential")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()

	identity, err := auth.NewMSALIdentity(cfg.Auth.ClientID, cfg.Auth.Authority, cfg.Auth.Scopes)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create identity client")
	}
	manager := auth.NewManager(auth.NewStore(cfg.Auth.CredentialFile), identity, cfg.StaleAfter(),
		auth.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status, err := manager.Evaluate(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read credential cache")
	}
	printStatus(status)

	if *check || !status.NeedsInteractive() {
		return
	}

	status, err = manager.Login(ctx, func(login *auth.DeviceLogin) {
		if login.Message != "" {
			fmt.Println(login.Message)
			return
		}
		fmt.Printf("Open %s and enter the code %s\n", login.VerificationURL, login.UserCode)
	})
	if err != nil {
		logger.WithError(err).Fatal("Sign-in failed")
	}

	fmt.Println("Signed in successfully.")
	printStatus(status)
}

func printStatus(status *auth.Status) {
	const layout = "2006-01-02 15:04 UTC"

	fmt.Printf("Credential state: %s\n", status.State)
	if reason := status.Reason(); reason != nil {
		fmt.Printf("Reason: %v\n", reason)
	}
	if !status.GeneratedAt.IsZero() {
		fmt.Printf("Generated at: %s\n", status.GeneratedAt.UTC().Format(layout))
		fmt.Printf("Valid until:  %s\n", status.ValidUntil.UTC().Format(layout))
	}
	if !status.TokenExpiry.IsZero() {
		fmt.Printf("Access token expires: %s (in %s)\n", status.TokenExpiry.UTC().Format(layout),
			time.Until(status.TokenExpiry).Round(time.Minute))
	}
}
