// Command paykit decodes intent actions, talks to the payments API,
// receives webhooks and serves the MCP tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/extensions/actionschema"
	"github.com/paykit-sdk/paykit/internal/config"
)

// app is the state shared by all subcommands, filled in by the root
// command's PersistentPreRunE.
type app struct {
	configPath string
	envFile    string
	verbose    bool
	schema     bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "paykit",
		Short: "paykit - payment intent toolkit",
		Long: `paykit decodes the next_action of payment and setup intents, retrieves
and confirms intents through the API, receives signed webhooks and exposes
the same operations as MCP tools.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "paykit.yaml", "Config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "Optional .env file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&a.schema, "schema", false, "Validate action payloads against the bundled JSON schemas")

	rootCmd.AddCommand(
		newDecodeCmd(a),
		newRetrieveCmd(a),
		newConfirmCmd(a),
		newServeWebhooksCmd(a),
		newMCPCmd(a),
	)

	return rootCmd
}

func (a *app) init() error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	logger, err := cfg.NewLogger(a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// decoder builds the decoder shared by every command. Demotions are
// logged at debug level.
func (a *app) decoder() (*paykit.Decoder, error) {
	opts := []paykit.DecoderOption{paykit.WithLogger(a.logger)}
	if a.schema {
		v, err := actionschema.New()
		if err != nil {
			return nil, fmt.Errorf("failed to load action schemas: %w", err)
		}
		opts = append(opts, paykit.WithPayloadValidator(v))
	}
	return paykit.NewDecoder(opts...), nil
}
