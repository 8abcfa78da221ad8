package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

const testSpreadsheetID = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"

type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) GetToken(context.Context) (string, error) { return s.token, s.err }
func (s *staticTokens) InvalidateCache()                         {}
func (s *staticTokens) IsAuthenticated() bool                    { return s.err == nil }

// fakeSheets is an in-memory stand-in for the Sheets v4 REST API.
type fakeSheets struct {
	mu       sync.Mutex
	title    string
	tabs     map[string][][]any
	failNext []int
	auth     []string
	requests []string
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{title: "Vocabulary", tabs: map[string][][]any{"Sheet1": nil}}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if len(f.failNext) > 0 {
		code := f.failNext[0]
		f.failNext = f.failNext[1:]
		if code == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "1")
		}
		writeAPIError(w, code, http.StatusText(code))
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	id, sub, _ := strings.Cut(rest, "/")
	id, action, _ := strings.Cut(id, ":")
	if id != testSpreadsheetID {
		writeAPIError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	switch {
	case sub == "" && action == "" && r.Method == http.MethodGet:
		f.writeSpreadsheet(w)
	case sub == "" && action == "batchUpdate":
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct{ Title string } `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.tabs[rq.AddSheet.Properties.Title] = nil
		}
		writeJSON(w, map[string]any{"spreadsheetId": id})
	case strings.HasPrefix(sub, "values/"):
		f.serveValues(w, r, strings.TrimPrefix(sub, "values/"))
	default:
		writeAPIError(w, http.StatusBadRequest, "unexpected request "+r.URL.Path)
	}
}

func (f *fakeSheets) writeSpreadsheet(w http.ResponseWriter) {
	var sheetsList []map[string]any
	for name := range f.tabs {
		sheetsList = append(sheetsList, map[string]any{"properties": map[string]any{"title": name}})
	}
	writeJSON(w, map[string]any{
		"spreadsheetId": testSpreadsheetID,
		"properties":    map[string]any{"title": f.title},
		"sheets":        sheetsList,
	})
}

func (f *fakeSheets) serveValues(w http.ResponseWriter, r *http.Request, rng string) {
	rng, appending := strings.CutSuffix(rng, ":append")
	rng, clearing := strings.CutSuffix(rng, ":clear")

	sheetName, cells, _ := strings.Cut(rng, "!")
	sheetName = strings.ReplaceAll(strings.Trim(sheetName, "'"), "''", "'")
	rows, ok := f.tabs[sheetName]
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "Unable to parse range: "+rng)
		return
	}

	var body struct {
		Values [][]any `json:"values"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	switch {
	case appending:
		f.tabs[sheetName] = append(rows, body.Values...)
		writeJSON(w, map[string]any{"updates": map[string]any{"updatedRows": len(body.Values)}})
	case clearing:
		f.tabs[sheetName] = nil
		writeJSON(w, map[string]any{"clearedRange": rng})
	case r.Method == http.MethodPut:
		for i, v := range body.Values {
			if i < len(rows) {
				rows[i] = v
			} else {
				rows = append(rows, v)
			}
		}
		f.tabs[sheetName] = rows
		writeJSON(w, map[string]any{"updatedRows": len(body.Values)})
	case r.Method == http.MethodGet:
		out := rows
		if cells == "A1:E1" && len(rows) > 1 {
			out = rows[:1]
		}
		writeJSON(w, map[string]any{"range": rng, "values": out})
	}
}

func (f *fakeSheets) tab(name string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs[name]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, msg)
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := newFakeSheets()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), &staticTokens{token: "test-token"}, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	client.limiter = NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000})
	return client, fake
}

func sampleRows() []domain.SheetRow {
	first := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return []domain.SheetRow{
		{SourceLang: "en", SourceText: "house", TargetLang: "es", TargetText: "casa", FirstSeen: first},
		{SourceLang: "en", SourceText: "dog", TargetLang: "es", TargetText: "perro", FirstSeen: first},
	}
}

func TestClient_Validate(t *testing.T) {
	client, fake := newTestClient(t)

	title, err := client.Validate(context.Background(), testSpreadsheetID)
	require.NoError(t, err)
	assert.Equal(t, "Vocabulary", title)
	assert.Equal(t, []string{"Bearer test-token"}, fake.auth)

	_, err = client.Validate(context.Background(), "1AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	assert.ErrorIs(t, err, domain.ErrInvalidSpreadsheetID)
}

func TestClient_EnsureSheet_CreatesTabWithHeader(t *testing.T) {
	client, fake := newTestClient(t)

	require.NoError(t, client.EnsureSheet(context.Background(), testSpreadsheetID, "Starred Words"))

	rows := fake.tab("Starred Words")
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"Source Language", "Source Text", "Target Language", "Target Text", "First Seen"}, rows[0])
}

func TestClient_EnsureSheet_ExistingTab(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	// Empty existing tab gets a header.
	require.NoError(t, client.EnsureSheet(ctx, testSpreadsheetID, "Sheet1"))
	assert.Len(t, fake.tab("Sheet1"), 1)

	// Non-empty tab is left alone.
	_, err := client.AppendRows(ctx, testSpreadsheetID, "Sheet1", sampleRows())
	require.NoError(t, err)
	require.NoError(t, client.EnsureSheet(ctx, testSpreadsheetID, "Sheet1"))
	assert.Len(t, fake.tab("Sheet1"), 3)
}

func TestClient_AppendRows(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureSheet(ctx, testSpreadsheetID, "Words"))
	n, err := client.AppendRows(ctx, testSpreadsheetID, "Words", sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := fake.tab("Words")
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"en", "house", "es", "casa", "2026-03-01T09:30:00Z"}, rows[1])

	n, err = client.AppendRows(ctx, testSpreadsheetID, "Words", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_ReplaceRows(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureSheet(ctx, testSpreadsheetID, "Words"))
	_, err := client.AppendRows(ctx, testSpreadsheetID, "Words", sampleRows())
	require.NoError(t, err)

	n, err := client.ReplaceRows(ctx, testSpreadsheetID, "Words", sampleRows()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := fake.tab("Words")
	require.Len(t, rows, 2)
	assert.Equal(t, "Source Language", rows[0][0])
	assert.Equal(t, "house", rows[1][1])
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusUnauthorized, domain.ErrAuthExpired},
		{http.StatusNotFound, domain.ErrInvalidSpreadsheetID},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			client, fake := newTestClient(t)
			fake.failNext = []int{tt.code}

			_, err := client.Validate(context.Background(), testSpreadsheetID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_RateLimitOpensRetryWindow(t *testing.T) {
	client, fake := newTestClient(t)
	fake.failNext = []int{http.StatusTooManyRequests}

	before := time.Now()
	_, err := client.Validate(context.Background(), testSpreadsheetID)
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.WithinDuration(t, before.Add(time.Second), client.limiter.RetryAt(), 500*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Validate(ctx, testSpreadsheetID)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "next call waits for the window")
}

func TestClient_TokenError(t *testing.T) {
	fake := newFakeSheets()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := NewClient(context.Background(), &staticTokens{err: domain.ErrAuthRequired}, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = client.Validate(context.Background(), testSpreadsheetID)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Empty(t, fake.requests, "no request without a token")
}

func TestA1Range(t *testing.T) {
	assert.Equal(t, "'Sheet1'!A1", a1Range("Sheet1", "A1"))
	assert.Equal(t, "'Bob''s words'!A1:E1", a1Range("Bob's words", "A1:E1"))
	assert.Equal(t, "'Starred Words'", a1Range("Starred Words", ""))
}

func TestWrapError_NonAPIError(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, WrapError(plain))
	assert.NoError(t, WrapError(nil))
}
