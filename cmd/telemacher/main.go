// Command telemacher runs Harris, the conversational weather assistant.
//
//	@title			telemacher API
//	@version		1.0
//	@description	Harris, a conversational weather assistant.
//	@BasePath		/
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tbourn/telemacher/internal/config"
	"github.com/tbourn/telemacher/internal/sysutil"
)

var version = "dev"

// flags override the environment when set.
type flags struct {
	address       string
	port          string
	opsPort       string
	googleAPIKey  string
	darkSkyAPIKey string
	nluURL        string
	nluBackend    string
}

func (f flags) apply(cfg *config.Config) error {
	cfg.Address = sysutil.FirstNonEmpty(f.address, cfg.Address)
	cfg.Port = sysutil.FirstNonEmpty(f.port, cfg.Port)
	cfg.OpsPort = sysutil.FirstNonEmpty(f.opsPort, cfg.OpsPort)
	cfg.Upstream.GoogleAPIKey = sysutil.FirstNonEmpty(f.googleAPIKey, cfg.Upstream.GoogleAPIKey)
	cfg.Upstream.DarkSkyAPIKey = sysutil.FirstNonEmpty(f.darkSkyAPIKey, cfg.Upstream.DarkSkyAPIKey)
	cfg.Upstream.NLUURL = sysutil.FirstNonEmpty(f.nluURL, cfg.Upstream.NLUURL)
	cfg.Upstream.NLUBackend = sysutil.FirstNonEmpty(f.nluBackend, cfg.Upstream.NLUBackend)
	return cfg.Validate()
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "telemacher",
		Short:         "Harris, a chat assistant that answers weather questions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal outside development.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := f.apply(&cfg); err != nil {
				return fmt.Errorf("flags: %w", err)
			}
			sysutil.ConfigureLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.address, "address", "", "listen address (env ADDRESS)")
	fs.StringVarP(&f.port, "port", "p", "", "chat listener port (env PORT)")
	fs.StringVar(&f.opsPort, "ops-port", "", "health/metrics listener port (env OPS_PORT)")
	fs.StringVar(&f.googleAPIKey, "google-api-key", "", "Google Places API key (env GOOGLE_API_KEY)")
	fs.StringVar(&f.darkSkyAPIKey, "dark-sky-api-key", "", "Dark Sky API key (env DARK_SKY_API_KEY)")
	fs.StringVar(&f.nluURL, "nlu-url", "", "Snips-compatible NLU parse endpoint (env NLU_URL)")
	fs.StringVar(&f.nluBackend, "nlu-backend", "", "NLU backend: http or gemini (env NLU_BACKEND)")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
