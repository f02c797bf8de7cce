// Package main provides the autodj CLI application entry point.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"autodj/internal/core"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "autodj",
	Short: "autodj - adaptive playback preferences",
	Long: `autodj learns which music genres a listener likes from skips and likes, and ranks
candidate tracks into an adaptive playlist that favours them while keeping some variety.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return validateConfig(config)
	},
	RunE: runRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")
	rootCmd.PersistentFlags().String("store-backend", core.StoreBackendSQLite, "Storage backend (sqlite, badger, memory)")
	rootCmd.PersistentFlags().String("store-path", "./autodj.db", "SQLite database file or Badger directory")
	rootCmd.PersistentFlags().String("preferences-key", core.DefaultPreferencesKey, "Storage key of the preference store")
	rootCmd.PersistentFlags().String("history-key", core.DefaultHistoryKey, "Storage key of the play history")
	rootCmd.PersistentFlags().String("liked-key", core.DefaultLikedKey, "Storage key of the liked songs")
	rootCmd.PersistentFlags().Int("history-size", core.DefaultHistorySize, "Number of played tracks remembered")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Seed for genre recommendations (0 seeds from the clock)")
	rootCmd.PersistentFlags().Float64("duplicate-threshold", core.DefaultDuplicateThreshold,
		"Title similarity at which candidates from the same channel count as duplicates (0 disables)")
	rootCmd.PersistentFlags().Int("youtube-timeout-secs", core.DefaultYouTubeTimeoutSecs, "YouTube oEmbed request timeout in seconds")
	rootCmd.PersistentFlags().Int("resolve-concurrency", core.DefaultResolveConcurrency, "Maximum parallel YouTube lookups")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "Write Prometheus metrics to this file after each command")
	rootCmd.Flags().Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(newClassifyCmd(), newSkipCmd(), newLikeCmd(), newLikedCmd(),
		newPlayedCmd(), newRecommendCmd(), newPrefsCmd(), newRankCmd())
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("AUTODJ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureStore(cfg)
	configureEngine(cfg)
	configureQueue(cfg)
	configureYouTube(cfg)
	configureMetrics(cfg)
	configureLog(cfg)

	return cfg
}

func configureStore(cfg *core.Config) {
	cfg.Store.Backend = strings.ToLower(viper.GetString("store-backend"))
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = core.StoreBackendSQLite
	}
	if path := viper.GetString("store-path"); path != "" {
		cfg.Store.Path = path
	}
	if key := viper.GetString("preferences-key"); key != "" {
		cfg.Store.PreferencesKey = key
	}
	if key := viper.GetString("history-key"); key != "" {
		cfg.Store.HistoryKey = key
	}
	if key := viper.GetString("liked-key"); key != "" {
		cfg.Store.LikedKey = key
	}
}

func configureEngine(cfg *core.Config) {
	cfg.Engine.Seed = viper.GetUint64("seed")
}

func configureQueue(cfg *core.Config) {
	cfg.Queue.HistorySize = viper.GetInt("history-size")
	if cfg.Queue.HistorySize <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid history size (%d), using default (%d)\n",
			cfg.Queue.HistorySize, core.DefaultHistorySize)
		cfg.Queue.HistorySize = core.DefaultHistorySize
	}
	cfg.Queue.DuplicateThreshold = viper.GetFloat64("duplicate-threshold")
}

func configureYouTube(cfg *core.Config) {
	cfg.YouTube.TimeoutSecs = viper.GetInt("youtube-timeout-secs")
	if cfg.YouTube.TimeoutSecs <= 0 {
		cfg.YouTube.TimeoutSecs = core.DefaultYouTubeTimeoutSecs
	}
	cfg.YouTube.ResolveConcurrency = viper.GetInt("resolve-concurrency")
	if cfg.YouTube.ResolveConcurrency <= 0 {
		cfg.YouTube.ResolveConcurrency = core.DefaultResolveConcurrency
	}
}

func configureMetrics(cfg *core.Config) {
	cfg.Metrics.TextfilePath = viper.GetString("metrics-textfile")
}

func configureLog(cfg *core.Config) {
	if level := viper.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := viper.GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
}

func validateConfig(cfg *core.Config) error {
	switch cfg.Store.Backend {
	case core.StoreBackendSQLite, core.StoreBackendBadger, core.StoreBackendMemory:
	default:
		return fmt.Errorf("unsupported store backend %q (expected %s, %s or %s)", cfg.Store.Backend,
			core.StoreBackendSQLite, core.StoreBackendBadger, core.StoreBackendMemory)
	}

	keys := map[string]string{cfg.Store.PreferencesKey: "preferences"}
	for _, entry := range []struct{ name, key string }{
		{"history", cfg.Store.HistoryKey},
		{"liked", cfg.Store.LikedKey},
	} {
		if other, taken := keys[entry.key]; taken {
			return fmt.Errorf("%s key and %s key must differ, both are %q", other, entry.name, entry.key)
		}
		keys[entry.key] = entry.name
	}

	if cfg.Queue.DuplicateThreshold > 1 {
		return fmt.Errorf("duplicate threshold must be at most 1, got %v", cfg.Queue.DuplicateThreshold)
	}

	return nil
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
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if strings.ToLower(format) == "text" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if generate, _ := cmd.Flags().GetBool("generate-env-example"); generate {
		return generateEnvExample(cmd)
	}
	return cmd.Help()
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# autodj Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: AUTODJ_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	generateSection(&content, cmd, "Storage",
		"store-backend", "store-path", "preferences-key", "history-key", "liked-key")
	generateSection(&content, cmd, "Recommendations and Queue",
		"seed", "history-size", "duplicate-threshold")
	generateSection(&content, cmd, "YouTube Lookups",
		"youtube-timeout-secs", "resolve-concurrency")
	generateSection(&content, cmd, "Metrics",
		"metrics-textfile")
	generateSection(&content, cmd, "Logging Configuration",
		"log-level", "log-format")

	return content.String()
}

func generateSection(content *strings.Builder, cmd *cobra.Command, title string, flagNames ...string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# CLI: --%s\n", strings.Join(flagNames, ", --"))

	for _, flagName := range flagNames {
		usage := ""
		if f := cmd.Root().PersistentFlags().Lookup(flagName); f != nil {
			usage = f.Usage
		}
		defValue := getDefaultValueString(cmd, flagName)
		fmt.Fprintf(content, "%s=%s    # %s (default: %q)\n", flagToEnvVar(flagName), defValue, usage, defValue)
	}
	content.WriteString("\n")
}

func flagToEnvVar(flagName string) string {
	return "AUTODJ_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.Root().PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}
