// Command server runs the Green Earth Initiative backend and a few operator
// tools that talk to it.
//
// @title        Green Earth Initiative API
// @version      1.0.0
// @description  Donation backend: impact estimates, pledges, wallet sessions and a Hiro Platform API proxy.
// @BasePath     /
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "greenearth",
	Short: "Green Earth Initiative donation backend",
	Long: `Green Earth Initiative donation backend.

Run "greenearth serve" to start the HTTP service. The other commands are
operator tools: impact projections and checks against a running server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of a running server")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(checkAuthCmd)
	rootCmd.AddCommand(accountCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogger builds a production logger when ENVIRONMENT is "production"
func initLogger() (*zap.Logger, error) {
	if os.Getenv("ENVIRONMENT") == "production" {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		return cfg.Build()
	}
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
