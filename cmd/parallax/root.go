package main

import (
	"time"

	"github.com/spf13/cobra"

	"parallax/internal/config"
	"parallax/internal/logging"
	"parallax/internal/wiring"
)

// rootOptions holds the persistent flags and the config resolved from them.
type rootOptions struct {
	configPath string
	ollamaURL  string
	model      string
	timeout    time.Duration
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "parallax",
		Short: "Sectioning and voting over a local Ollama model",
		Long: `parallax demonstrates two LLM parallelization patterns against a local
Ollama server:

  sectioning  a newsletter is split into five sections generated concurrently
  voting      three prompt variants classify sentiment, the majority wins`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}
	cmd.Version = version

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to config file (YAML/JSON)")
	f.StringVar(&opts.ollamaURL, "ollama-url", "", "Ollama base URL (default: $"+config.EnvBaseURL+" or "+config.DefaultBaseURL+")")
	f.StringVar(&opts.model, "model", "", "Model name (default: $"+config.EnvModel+" or "+config.DefaultModel+")")
	f.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (0 = none)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format: text, json")

	cmd.AddCommand(newNewsletterCmd(opts))
	cmd.AddCommand(newSentimentCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// resolve layers defaults, config file, environment and flags, then
// initializes logging.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.LoadFromPath(o.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	f := cmd.Flags()
	if f.Changed("ollama-url") {
		cfg.Ollama.BaseURL = o.ollamaURL
	}
	if f.Changed("model") {
		cfg.Ollama.Model = o.model
	}
	if f.Changed("timeout") {
		cfg.Ollama.Timeout = config.Duration(o.timeout)
	}
	if f.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	o.cfg = cfg
	return nil
}

func (o *rootOptions) services() (*wiring.Services, error) {
	return wiring.New(o.cfg)
}
