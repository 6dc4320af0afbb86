package config

// Config is the full application configuration.
//
// All durations are Go duration strings (e.g. "500ms", "30s", "1m").
type Config struct {
	Telegram   TelegramConfig   `json:"telegram"`
	Reader     ReaderConfig     `json:"reader"`
	Classifier ClassifierConfig `json:"classifier"`
	Semantic   SemanticConfig   `json:"semantic"`
	Dedup      DedupConfig      `json:"dedup"`
	Schedule   ScheduleConfig   `json:"schedule"`
	Storage    StorageConfig    `json:"storage"`
	Logging    LoggingConfig    `json:"logging"`
}

// TelegramConfig configures the delivery bot. The token comes from the
// environment when left empty (BOT_TOKEN), so config files stay secret-free.
type TelegramConfig struct {
	Token string `json:"token,omitempty"`
	// Targets are recipient handles; each must have registered with the bot
	// out-of-band so its chat id is known to the store.
	Targets []string `json:"targets"`
	// PartDelay is the pause between parts of an oversized message.
	PartDelay string `json:"part_delay,omitempty"`
}

// ReaderConfig controls the feed fetch stage.
//
// Defaults (when fields are omitted/zero):
//   - since_hours: 24
//   - message_limit: 100
//   - batch_size: 10
//   - batch_delay: "30s"
//   - global_delay: "100ms"
//   - source_delay: "500ms"
type ReaderConfig struct {
	SinceHours   int    `json:"since_hours,omitempty"`
	MessageLimit int    `json:"message_limit,omitempty"`
	BatchSize    int    `json:"batch_size,omitempty"`
	BatchDelay   string `json:"batch_delay,omitempty"`
	GlobalDelay  string `json:"global_delay,omitempty"`
	SourceDelay  string `json:"source_delay,omitempty"`
}

// ClassifierConfig tunes the contextual confirmation sub-check. The
// category rule table itself is data in internal/classify.
type ClassifierConfig struct {
	ContextMinMatches int `json:"context_min_matches,omitempty"` // default 2
	FuzzyThreshold    int `json:"fuzzy_threshold,omitempty"`     // default 85
}

// SemanticConfig controls the optional second-pass classifier.
// The API key comes from the environment (OPENAI_API_KEY).
type SemanticConfig struct {
	Enabled    bool   `json:"enabled"`
	Model      string `json:"model,omitempty"`       // default "gpt-4o-mini"
	BatchSize  int    `json:"batch_size,omitempty"`  // default 15
	BatchPause string `json:"batch_pause,omitempty"` // default "1s"
}

// DedupConfig controls duplicate detection and retention.
type DedupConfig struct {
	WindowDays     int `json:"window_days,omitempty"`     // default 7
	TitleThreshold int `json:"title_threshold,omitempty"` // default 90
	RetentionDays  int `json:"retention_days,omitempty"`  // default 30
}

// ScheduleConfig is the daily trigger: local time "HH:MM" in an IANA zone.
type ScheduleConfig struct {
	Time     string `json:"time,omitempty"`     // default "21:00"
	Timezone string `json:"timezone,omitempty"` // default "Europe/Moscow"
}

type StorageConfig struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}
