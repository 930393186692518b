// Package main provides the songbridge CLI: a web service and a one-shot command that turn
// Spotify track links into Qobuz links.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"songbridge/internal/core"
	"songbridge/internal/flood"
	httpserver "songbridge/internal/http"
	"songbridge/internal/i18n"
	"songbridge/internal/qobuz"
	"songbridge/internal/spotify"
	"songbridge/internal/store"
)

const (
	defaultServerHost = "0.0.0.0"
	logFormatConsole  = "console"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "songbridge",
	Short: "songbridge - Spotify track links to Qobuz links",
	Long: `songbridge serves a small web form that takes a Spotify track link, looks the track up
on Spotify and returns the matching Qobuz link.`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert <spotify-url>",
	Short: "Convert a single Spotify track link and print the Qobuz link",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console)")
	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("qobuz-email", "", "Qobuz account email")
	flags.String("qobuz-password", "", "Qobuz account password or its MD5 digest")
	flags.String("qobuz-app-id", "", "Qobuz app ID (skips web player bootstrap when set with --qobuz-app-secret)")
	flags.String("qobuz-app-secret", "", "Qobuz app secret")
	flags.Bool("qobuz-session-cache", false, "Reuse Qobuz sessions between conversions")
	flags.Int("qobuz-session-ttl-mins", core.DefaultQobuzSessionTTLMins, "Lifetime of a cached Qobuz session in minutes")
	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("UI language (%s)", supportedLangs))
	flags.Int("flood-limit-per-minute", 0, "Maximum conversions per client per minute (0 disables)")
	flags.Int("upstream-timeout-secs", core.DefaultUpstreamTimeoutSecs, "Timeout for one conversion's upstream calls")
	rootCmd.Flags().Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("generate-env-example", rootCmd.Flags().Lookup("generate-env-example")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(convertCmd)
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	// No prefix: the credentials are read from SPOTIFY_CLIENT_ID, QOBUZ_EMAIL and so on.
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureSpotify(cfg)
	configureQobuz(cfg)
	configureServer(cfg)
	configureApp(cfg)
	configureLogging(cfg)

	return cfg
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
}

func configureQobuz(cfg *core.Config) {
	cfg.Qobuz.Email = viper.GetString("qobuz-email")
	cfg.Qobuz.Password = viper.GetString("qobuz-password")
	cfg.Qobuz.AppID = viper.GetString("qobuz-app-id")
	cfg.Qobuz.AppSecret = viper.GetString("qobuz-app-secret")
	cfg.Qobuz.SessionCache = viper.GetBool("qobuz-session-cache")

	ttlMins := viper.GetInt("qobuz-session-ttl-mins")
	if ttlMins <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid Qobuz session TTL (%d), using default (%d)\n",
			ttlMins, core.DefaultQobuzSessionTTLMins)
		ttlMins = core.DefaultQobuzSessionTTLMins
	}
	cfg.Qobuz.SessionTTL = time.Duration(ttlMins) * time.Minute
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
}

func configureApp(cfg *core.Config) {
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")

	timeoutSecs := viper.GetInt("upstream-timeout-secs")
	if timeoutSecs <= 0 {
		timeoutSecs = core.DefaultUpstreamTimeoutSecs
	}
	cfg.App.UpstreamTimeout = time.Duration(timeoutSecs) * time.Second
}

func configureLogging(cfg *core.Config) {
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, logFormatConsole) {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

// newConverter wires both provider connectors into a converter.
func newConverter(cfg *core.Config, log *zap.Logger) *core.Converter {
	httpClient := &http.Client{Timeout: cfg.App.UpstreamTimeout}

	var sessions *store.SessionCache[*qobuz.Session]
	if cfg.Qobuz.SessionCache {
		sessions = store.NewSessionCache[*qobuz.Session](cfg.Qobuz.SessionCacheN, cfg.Qobuz.SessionTTL)
		log.Info("Qobuz session cache enabled", zap.Duration("ttl", cfg.Qobuz.SessionTTL))
	}

	source := spotify.NewConnector(&cfg.Spotify, httpClient, log.Named("spotify"))
	destination := qobuz.NewConnector(&cfg.Qobuz, httpClient, sessions, log.Named("qobuz"))

	return core.NewConverter(cfg, source, destination, log.Named("converter"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	defer func() {
		_ = logger.Sync()
	}()

	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	converter := newConverter(config, logger)
	if missing := converter.MissingCredentials(); len(missing) > 0 {
		logger.Warn("Credentials missing, conversions will fail until they are set",
			zap.Strings("missing", missing))
	}

	floodgate := flood.New(config.App.FloodLimitPerMinute)
	server, err := httpserver.NewServer(&config.Server, converter, floodgate, config.App.Language, logger.Named("http"))
	if err != nil {
		return err
	}

	logger.Info("Starting songbridge",
		zap.String("language", config.App.Language),
		zap.Int("flood_limit_per_minute", config.App.FloodLimitPerMinute),
		zap.Duration("upstream_timeout", config.App.UpstreamTimeout),
		zap.Bool("qobuz_session_cache", config.Qobuz.SessionCache))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("songbridge stopped with error", zap.Error(err))
		return err
	}

	logger.Info("songbridge stopped gracefully")
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := newConverter(config, logger).Convert(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Link)
	return nil
}
