package model

// ================ Config ================
type BotConfig struct {
	Name string `envconfig:"BOT_NAME" default:"Regina"`
	// Seed fixes the response sampler; zero draws a random seed.
	Seed      uint64 `envconfig:"BOT_SEED" default:"0"`
	RulesPath string `envconfig:"BOT_RULES_PATH"`
}

type ConversationConfig struct {
	TTL          string `envconfig:"CONVERSATION_TTL" default:"30m"`
	HistoryTurns int    `envconfig:"CONVERSATION_HISTORY_TURNS" default:"10"`
}
