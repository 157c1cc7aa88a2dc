package cmd

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jjenkins/agencydash/internal/config"
	"github.com/jjenkins/agencydash/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "agencydash",
	Short: "Government agency and contact directory",
	Long: `agencydash serves a directory of government agencies and their contacts.
Signed-in users can reveal a limited number of contact emails and phone
numbers per day.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "agencydash.yaml", "Path to the YAML config file")
}

// setup loads and validates configuration and configures logging. It exits
// the process on failure.
func setup() (*config.Config, *log.Logger, io.Closer) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	return cfg, logger, closer
}
