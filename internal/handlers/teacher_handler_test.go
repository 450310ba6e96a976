package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"classquiz/internal/models"
)

func settingsRequest(t *testing.T, form url.Values) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/teacher/settings", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := r.ParseForm(); err != nil {
		t.Fatalf("ParseForm() failed: %v", err)
	}
	return r
}

func TestParseSettingsForm(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    models.Settings
		wantErr bool
	}{
		{
			name: "all fields set",
			form: url.Values{
				"questions_per_test": {"8"},
				"show_explanation":   {"on"},
				"wrong_only_mode":    {"on"},
				"daily_limit":        {"5"},
				"time_limit_minutes": {"10"},
			},
			want: models.Settings{
				QuestionsPerTest: 8,
				ShowExplanation:  true,
				WrongOnlyMode:    true,
				DailyLimit:       5,
				TimeLimitSeconds: 600,
			},
		},
		{
			name: "unchecked boxes and blank numbers",
			form: url.Values{
				"questions_per_test": {"3"},
			},
			want: models.Settings{QuestionsPerTest: 3},
		},
		{
			name:    "missing question count",
			form:    url.Values{},
			wantErr: true,
		},
		{
			name: "zero questions rejected",
			form: url.Values{
				"questions_per_test": {"0"},
			},
			wantErr: true,
		},
		{
			name: "negative daily limit rejected",
			form: url.Values{
				"questions_per_test": {"5"},
				"daily_limit":        {"-1"},
			},
			wantErr: true,
		},
		{
			name: "negative time limit rejected",
			form: url.Values{
				"questions_per_test": {"5"},
				"time_limit_minutes": {"-1"},
			},
			wantErr: true,
		},
		{
			name: "non-numeric question count rejected",
			form: url.Values{
				"questions_per_test": {"lots"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSettingsForm(settingsRequest(t, tt.form))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSettingsForm() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseSettingsForm() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
