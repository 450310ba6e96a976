// Package mirror replicates local writes to a remote Google spreadsheet on a
// best-effort basis. All calls are queued and executed by a single background
// worker; failures are logged and never reach the request path.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2/google"
)

const (
	sheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	sheetsScope   = "https://www.googleapis.com/auth/spreadsheets"

	requestTimeout = 15 * time.Second
	queueSize      = 64
)

// passwordColumn is the 1-based column of the password cell in the remote
// user sheet, matching the local users workbook layout
const passwordColumn = 2

// Mirror is the asynchronous replication client. A nil *Mirror is a valid
// disabled mirror: every method is a no-op.
type Mirror struct {
	client        *http.Client
	spreadsheetID string
	sheetName     string
	tasks         chan func(ctx context.Context)
}

// New builds a mirror from a service account credentials file. Returns
// (nil, nil) when the credentials file or spreadsheet ID is not configured,
// which disables mirroring.
func New(credsFile, spreadsheetID, sheetName string) (*Mirror, error) {
	if credsFile == "" || spreadsheetID == "" {
		return nil, nil
	}

	data, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read mirror credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mirror credentials: %w", err)
	}

	return &Mirror{
		client:        conf.Client(context.Background()),
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		tasks:         make(chan func(ctx context.Context), queueSize),
	}, nil
}

// Start runs the replication worker until the context is cancelled
func (m *Mirror) Start(ctx context.Context) {
	if m == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-m.tasks:
				taskCtx, cancel := context.WithTimeout(ctx, requestTimeout)
				task(taskCtx)
				cancel()
			}
		}
	}()
}

// EnqueueResultRow schedules an attempt row for replication. Never blocks;
// the row is dropped (and logged) when the queue is full.
func (m *Mirror) EnqueueResultRow(values []interface{}) {
	m.enqueue("result row", func(ctx context.Context) {
		if err := m.appendRow(ctx, values); err != nil {
			log.Printf("Mirror: failed to append result row: %v", err)
		}
	})
}

// EnqueuePasswordUpdate schedules a password cell update for the account.
// Never blocks; failures are logged only.
func (m *Mirror) EnqueuePasswordUpdate(account, newPassword string) {
	m.enqueue("password update", func(ctx context.Context) {
		if err := m.updatePassword(ctx, account, newPassword); err != nil {
			log.Printf("Mirror: failed to update password for %s: %v", account, err)
		}
	})
}

func (m *Mirror) enqueue(what string, task func(ctx context.Context)) {
	if m == nil {
		return
	}
	select {
	case m.tasks <- task:
	default:
		log.Printf("Mirror: queue full, dropping %s", what)
	}
}

// appendRow appends one row to the remote sheet
func (m *Mirror) appendRow(ctx context.Context, values []interface{}) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		sheetsBaseURL, m.spreadsheetID, url.PathEscape(m.sheetName))
	body := map[string]interface{}{"values": [][]interface{}{values}}
	return m.call(ctx, http.MethodPost, endpoint, body)
}

// updatePassword finds the account's row by scanning the first column and
// rewrites its password cell
func (m *Mirror) updatePassword(ctx context.Context, account, newPassword string) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s", sheetsBaseURL, m.spreadsheetID,
		url.PathEscape(m.sheetName+"!A:A"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("read accounts column: %s", responseError(resp))
	}

	var column struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&column); err != nil {
		return fmt.Errorf("decode accounts column: %w", err)
	}

	// Row 1 is the header
	row := 0
	for i, cells := range column.Values {
		if i == 0 {
			continue
		}
		if len(cells) > 0 && cells[0] == account {
			row = i + 1
			break
		}
	}
	if row == 0 {
		log.Printf("Mirror: account %s not found remotely, password not replicated", account)
		return nil
	}

	cell, err := cellRef(passwordColumn, row)
	if err != nil {
		return err
	}
	update := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW", sheetsBaseURL, m.spreadsheetID,
		url.PathEscape(fmt.Sprintf("%s!%s", m.sheetName, cell)))
	body := map[string]interface{}{"values": [][]interface{}{{newPassword}}}
	return m.call(ctx, http.MethodPut, update, body)
}

// call issues a JSON request and checks for a 2xx response
func (m *Mirror) call(ctx context.Context, method, endpoint string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s", responseError(resp))
	}
	return nil
}

// cellRef converts 1-based column/row numbers to an A1-style reference
func cellRef(col, row int) (string, error) {
	if col < 1 || row < 1 {
		return "", fmt.Errorf("invalid cell reference (%d, %d)", col, row)
	}
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return fmt.Sprintf("%s%d", name, row), nil
}

// responseError renders a short diagnostic from an error response
func responseError(resp *http.Response) string {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
}
