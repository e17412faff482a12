package main

// @title           Sercha Estimator API
// @version         1.0
// @description     Estimates software-project time and cost from client requirements, grounded in reference documents.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-estimator/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/v1
// @schemes   http https

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// configPath is the --config flag shared by every command
var configPath string

var rootCmd = &cobra.Command{
	Use:   "sercha-estimator",
	Short: "Software project time and cost estimator",
	Long: `sercha-estimator turns free-text client requirements into time and cost
ranges, grounded in a set of reference documents.

Run without a subcommand to start the HTTP API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ESTIMATOR_CONFIG"), "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, estimateCmd, indexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
