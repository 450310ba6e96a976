package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	QuestionsPath   string
	UsersPath       string
	ResultsPath     string
	SettingsPath    string
	TemplatesPath   string
	StaticFilesPath string
	SessionSecret   string
	SessionDuration time.Duration
	TeacherAccount  string

	// Remote mirror settings; the mirror is disabled when the
	// credentials file or spreadsheet ID is empty
	GoogleCredsFile string
	SpreadsheetID   string
	MirrorSheetName string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		QuestionsPath:   getEnv("QUESTIONS_PATH", "./questions.xlsx"),
		UsersPath:       getEnv("USERS_PATH", "./users.xlsx"),
		ResultsPath:     getEnv("RESULTS_PATH", "./quiz_results.xlsx"),
		SettingsPath:    getEnv("SETTINGS_PATH", "./settings.json"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./web/templates"),
		StaticFilesPath: getEnv("STATIC_PATH", "./web/static"),
		SessionSecret:   getEnv("SESSION_SECRET", "change-this-secret-key"),
		SessionDuration: 24 * time.Hour,
		TeacherAccount:  getEnv("TEACHER_ACCOUNT", "t001"),
		GoogleCredsFile: getEnv("GOOGLE_CREDS_FILE", ""),
		SpreadsheetID:   getEnv("SPREADSHEET_ID", ""),
		MirrorSheetName: getEnv("MIRROR_SHEET_NAME", "Sheet1"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
