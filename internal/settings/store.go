// Package settings owns the teacher-adjustable quiz options. The values are
// process-wide mutable state backed by a small JSON document; the only writer
// is the teacher settings page.
package settings

import (
	"fmt"
	"log"
	"sync"

	"classquiz/internal/models"

	"github.com/spf13/viper"
)

// Store loads, serves and persists the settings document. Reads return a
// snapshot copy; Save replaces the whole document and persists immediately.
type Store struct {
	mu      sync.RWMutex
	path    string
	current models.Settings
}

// Load reads the settings document, creating it with defaults when it is
// absent or unreadable. Keys present in the document win; missing keys fall
// back to their defaults, so the schema can grow without migration.
func Load(path string) (*Store, error) {
	s := &Store{path: path, current: models.DefaultSettings()}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		// Absent and corrupt documents are treated the same: start over
		// from defaults and persist them.
		log.Printf("Settings document %s not usable (%v), writing defaults", path, err)
		if err := s.persist(s.current); err != nil {
			return nil, err
		}
		return s, nil
	}

	var loaded models.Settings
	if err := v.Unmarshal(&loaded); err != nil {
		log.Printf("Settings document %s not decodable (%v), writing defaults", path, err)
		if err := s.persist(s.current); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.current = loaded
	return s, nil
}

// Get returns a snapshot of the current settings
func (s *Store) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save replaces the settings and persists them. Fails loudly when the
// document cannot be written; the in-memory value is not updated in that
// case.
func (s *Store) Save(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(settings); err != nil {
		return err
	}
	s.current = settings
	return nil
}

// persist serializes the full mapping, overwriting the document
func (s *Store) persist(settings models.Settings) error {
	v := newViper(s.path)
	v.Set("questions_per_test", settings.QuestionsPerTest)
	v.Set("show_explanation", settings.ShowExplanation)
	v.Set("wrong_only_mode", settings.WrongOnlyMode)
	v.Set("daily_limit", settings.DailyLimit)
	v.Set("time_limit_seconds", settings.TimeLimitSeconds)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings document: %w", err)
	}
	return nil
}

// newViper builds a viper instance with the document location and the
// defaults registered
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	defaults := models.DefaultSettings()
	v.SetDefault("questions_per_test", defaults.QuestionsPerTest)
	v.SetDefault("show_explanation", defaults.ShowExplanation)
	v.SetDefault("wrong_only_mode", defaults.WrongOnlyMode)
	v.SetDefault("daily_limit", defaults.DailyLimit)
	v.SetDefault("time_limit_seconds", defaults.TimeLimitSeconds)
	return v
}
