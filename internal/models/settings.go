package models

// Settings holds the five teacher-adjustable quiz options
type Settings struct {
	QuestionsPerTest int  `mapstructure:"questions_per_test"`
	ShowExplanation  bool `mapstructure:"show_explanation"`
	WrongOnlyMode    bool `mapstructure:"wrong_only_mode"`
	DailyLimit       int  `mapstructure:"daily_limit"`
	TimeLimitSeconds int  `mapstructure:"time_limit_seconds"`
}

// DefaultSettings returns the built-in defaults used when the settings
// document is absent or unreadable
func DefaultSettings() Settings {
	return Settings{
		QuestionsPerTest: 5,
		ShowExplanation:  true,
		WrongOnlyMode:    false,
		DailyLimit:       3,
		TimeLimitSeconds: 0,
	}
}
