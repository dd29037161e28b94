package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	xbrl "github.com/RxDataLab/go-xbrl"
	"github.com/RxDataLab/go-xbrl/disclosure"
	"github.com/RxDataLab/go-xbrl/mapping"
	"github.com/RxDataLab/go-xbrl/webcache"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "goxbrl",
	Short: "goxbrl - XBRL document and taxonomy loader",
	Long: `goxbrl discovers the documents of an XBRL entry point: schemas, linkbases,
instances, inline XBRL document sets, testcases and RSS feeds. It prints a JSON
summary of what was loaded together with every diagnostic raised on the way.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (GOXBRL_*)
3. goxbrl.toml in the current directory or $HOME/.goxbrl

Examples:
  # Load an instance and its DTS, fetching remote taxonomies
  goxbrl load --online https://www.sec.gov/Archives/edgar/data/.../filing.xml

  # Load two inline documents as one inline XBRL document set
  goxbrl ixds part1.htm part2.htm

  # Report the type of a document without loading it
  goxbrl identify schema.xsd`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return v.BindPFlags(cmd.Flags())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./goxbrl.toml)")
	flags.String("cache-dir", "", "Web cache directory")
	flags.String("user-agent", "goxbrl/1.0", "User-Agent for remote fetches (SEC requires a contact email)")
	flags.Float64("rate", 10, "Remote fetches per second")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Bool("online", false, "Fetch remote documents missing from the cache")
	flags.String("mappings", "", "TOML file of URI remappings")
	flags.String("disclosure", "", "TOML file describing a disclosure system")
	flags.Bool("skip-dts", false, "Do not load the DTS behind hrefs")
	flags.BoolP("verbose", "v", false, "Development logging to stderr")
	flags.StringP("output", "o", "", "Output JSON file path (default: stdout)")

	rootCmd.AddCommand(loadCmd, identifyCmd, ixdsCmd)
}

func initConfig() {
	if cfg, _ := rootCmd.PersistentFlags().GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
	} else if env := os.Getenv("GOXBRL_CONFIG"); env != "" {
		v.SetConfigFile(env)
	} else {
		v.SetConfigName("goxbrl")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.goxbrl")
	}
	v.SetEnvPrefix("GOXBRL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// A missing config file is fine
	_ = v.ReadInConfig()
}

func newLogger() (*zap.Logger, error) {
	if v.GetBool("verbose") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// sessionOptions builds the library options from the layered configuration.
func sessionOptions(logger *zap.Logger) (xbrl.Options, error) {
	opts := xbrl.Options{
		Logger: logger,
		Resolver: webcache.New(webcache.Config{
			Dir:               v.GetString("cache-dir"),
			UserAgent:         v.GetString("user-agent"),
			RequestsPerSecond: v.GetFloat64("rate"),
			Timeout:           v.GetDuration("timeout"),
			WorkOffline:       !v.GetBool("online"),
		}),
		SkipDTS:            v.GetBool("skip-dts"),
		IxdsTarget:         v.GetString("target"),
		IxdsLoadAllTargets: v.GetBool("all-targets"),
	}
	if path := v.GetString("mappings"); path != "" {
		table, err := mapping.Load(path)
		if err != nil {
			return opts, fmt.Errorf("failed to load mappings: %w", err)
		}
		opts.SessionMappings = table
	}
	if path := v.GetString("disclosure"); path != "" {
		system, err := disclosure.Load(path)
		if err != nil {
			return opts, fmt.Errorf("failed to load disclosure system: %w", err)
		}
		opts.DisclosureSystem = system
		opts.ValidateDisclosureSystem = true
	}
	return opts, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
