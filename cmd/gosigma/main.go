package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gosigma/internal/errors"
)

// version is stamped into run fingerprints; override with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "gosigma",
		Short:         "Monte Carlo null-hypothesis significance audits",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newListCmd(),
		newRunCmd(),
		newClassifyCmd(),
		newSelfcheckCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}
