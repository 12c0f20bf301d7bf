package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/keilerkonzept/footdash/internal/api"
	"github.com/keilerkonzept/footdash/internal/race"
	"github.com/keilerkonzept/footdash/log"
)

const envPrefix = "FOOTDASH"

type Config struct {
	ConfigFile string

	// api
	APIURL      string
	Timeout     time.Duration
	WaitForAPI  time.Duration
	DefaultTeam string

	// logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// render
	FPS          int
	RaceInterval time.Duration
	ViewSplit    int
	StatsEnabled bool
	StatsWindow  int
	AltScreen    bool
	LogScale     bool
}

var config = Config{
	APIURL:      api.DefaultBaseURL,
	Timeout:     30 * time.Second,
	WaitForAPI:  0,
	DefaultTeam: "England",

	LogLevel:  "info",
	LogFormat: "text",
	LogFile:   "",

	FPS:          10,
	RaceInterval: race.DefaultInterval,
	ViewSplit:    30,
	StatsEnabled: true,
	StatsWindow:  64,
	AltScreen:    true,
	LogScale:     false,
}

var rootCmd = &cobra.Command{
	Use:   "footdash",
	Short: "Terminal dashboard for international football results",
	Long: `footdash shows statistics served by the football stats API:
yearly results, goals, opponent rankings and animated bar races.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), rootTUIFlags)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (setupLogging -> isTUICommand -> rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := validateAndNormalizeConfig(); err != nil {
			return err
		}
		return setupLogging(cmd)
	}
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&config.ConfigFile, "config", "", "config file (default is $HOME/.footdash.yml)")
	pf.StringVar(&config.APIURL, "api-url", config.APIURL, "Base URL of the football stats API")
	pf.DurationVar(&config.Timeout, "timeout", config.Timeout, "Timeout for a single API request")
	pf.DurationVar(&config.WaitForAPI, "wait-for-api", config.WaitForAPI, "Wait this long for the API to become healthy (0 = don't wait)")
	pf.StringVar(&config.DefaultTeam, "default-team", config.DefaultTeam, "Team used when the team filter is blank")
	pf.StringVar(&config.LogLevel, "log-level", config.LogLevel, "controls the log level (debug, info, warn, error, fatal)")
	pf.StringVar(&config.LogFormat, "log-format", config.LogFormat, "controls the log output format (json, text)")
	pf.StringVar(&config.LogFile, "log-file", config.LogFile, "Write logs to this file (the terminal UI discards logs otherwise)")
	pf.DurationVar(&config.RaceInterval, "race-interval", config.RaceInterval, "Delay between bar race frames")

	rootCmd.AddCommand(newTUICmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newTournamentsCmd())
	rootCmd.AddCommand(newViewsCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if config.ConfigFile != "" {
		viper.SetConfigFile(config.ConfigFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".footdash")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// bindFlags applies config file and environment values to flags the user
// did not set, e.g. FOOTDASH_API_URL for --api-url.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not set flag value for %s: %v", f.Name, err)
			}
		}
	})
}

func validateAndNormalizeConfig() error {
	config.APIURL = strings.TrimSpace(config.APIURL)
	if config.APIURL == "" {
		return fmt.Errorf("--api-url must not be empty")
	}
	if !strings.HasPrefix(config.APIURL, "http://") && !strings.HasPrefix(config.APIURL, "https://") {
		return fmt.Errorf("--api-url must start with http:// or https:// (got %q)", config.APIURL)
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if config.WaitForAPI < 0 {
		return fmt.Errorf("--wait-for-api must be >= 0")
	}
	if config.RaceInterval <= 0 {
		return fmt.Errorf("--race-interval must be > 0")
	}
	if _, err := log.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	switch config.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("--log-format must be json or text (got %q)", config.LogFormat)
	}
	if config.FPS < 1 {
		return fmt.Errorf("--fps must be >= 1")
	}
	config.DefaultTeam = strings.TrimSpace(config.DefaultTeam)
	config.ViewSplit = min(60, max(15, config.ViewSplit))
	if config.StatsWindow < 16 {
		config.StatsWindow = 16
	}
	return nil
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// setupLogging installs the default logger. The terminal UI owns the screen,
// so it only logs when --log-file is given.
func setupLogging(cmd *cobra.Command) error {
	var w io.Writer = os.Stderr
	if config.LogFile != "" {
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = f
	} else if isTUICommand(cmd) {
		w = io.Discard
	}

	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(w,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(w,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
	return nil
}

func isTUICommand(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd.Name() == "tui"
}

func newClient() *api.Client {
	return api.NewClient(config.APIURL,
		api.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
		api.WithLogger(log.Default().Named("api")))
}
