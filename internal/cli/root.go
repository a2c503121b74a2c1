package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/papashirogane/chatbot/internal/agent/bot"
	"github.com/papashirogane/chatbot/internal/agent/graph/conversations"
	"github.com/papashirogane/chatbot/internal/agent/model"
	"github.com/papashirogane/chatbot/internal/agent/repo"
	"github.com/papashirogane/chatbot/internal/agent/rules"
	"github.com/papashirogane/chatbot/internal/core"
	pkgredis "github.com/papashirogane/chatbot/pkg/redis"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// AppConfig is everything the chat command reads from the environment
// (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	Bot          model.BotConfig
	Conversation model.ConversationConfig
}

var (
	flagName    string
	flagSeed    uint64
	flagRules   string
	flagVerbose bool
	flagEnvFile string
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chatbot",
		Short:         "Chat with a rule-based bot on the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runChat,
	}

	cmd.Flags().StringVar(&flagName, "name", "", "bot name (overrides BOT_NAME)")
	cmd.Flags().Uint64Var(&flagSeed, "seed", 0, "seed for reproducible replies (overrides BOT_SEED)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "path to a YAML rule book (overrides BOT_RULES_PATH)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log every cascade stage to stderr")
	cmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file to load before reading the environment")

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(flagEnvFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg.Bot)

	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: &level, Output: os.Stderr})

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	newBot, err := botFactory(cfg.Bot)
	if err != nil {
		return err
	}
	b, err := newBot()
	if err != nil {
		return err
	}

	r := &repl{
		in:     cmd.InOrStdin(),
		out:    cmd.OutOrStdout(),
		mm:     conversations.NewMessagesManager(store, b, cfg.Conversation),
		id:     uuid.NewString(),
		name:   b.Name(),
		newBot: newBot,
		prompt: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
	logx.Debug().Str("conversation_id", r.id).Str("bot", r.name).Msg("Conversation started")
	return r.run(ctx)
}

func loadConfig(envFile string) (AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", envFile, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, cfg *model.BotConfig) {
	if cmd.Flags().Changed("name") {
		cfg.Name = flagName
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flagSeed
	}
	if cmd.Flags().Changed("rules") {
		cfg.RulesPath = flagRules
	}
}

// openStore returns the Redis transcript store when REDIS_URL is set and the
// in-memory one otherwise.
func openStore(ctx context.Context, cfg AppConfig) (model.ConversationRepository, func(), error) {
	if !cfg.Redis.Enabled() {
		return repo.NewMemoryConversationRepository(), func() {}, nil
	}

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", cfg.Conversation.TTL, err)
	}
	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logx.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	return repo.NewRedisConversationRepository(rdb, ttl), closeFn, nil
}

// botFactory loads the rule book once and returns a constructor for fresh
// bots sharing it. A fixed seed gives every fresh bot the same sequence.
func botFactory(cfg model.BotConfig) (func() (*bot.Bot, error), error) {
	var opts []bot.Option
	if cfg.RulesPath != "" {
		book, err := rules.LoadFile(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bot.WithRuleBook(book))
	}
	if cfg.Seed != 0 {
		opts = append(opts, bot.WithSeed(cfg.Seed))
	}
	return func() (*bot.Bot, error) {
		return bot.New(cfg.Name, opts...)
	}, nil
}
