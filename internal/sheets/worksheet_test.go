package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// fakeGoogle serves the handful of Sheets and Drive endpoints the worksheet uses.
type fakeGoogle struct {
	mu          sync.Mutex
	titles      []string
	files       map[string]string
	rows        [][]interface{}
	appendCalls int
	failAppend  bool
	lastQuery   string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, "/files") && r.Method == http.MethodGet:
		f.lastQuery = r.URL.Query().Get("q")
		var files []map[string]string
		for name, id := range f.files {
			if strings.Contains(f.lastQuery, "'"+name+"'") {
				files = append(files, map[string]string{"id": id, "name": name})
			}
		}
		writeJSON(w, map[string]any{"files": files})
	case strings.Contains(path, "/values/") && strings.HasSuffix(path, ":append"):
		if f.failAppend {
			w.WriteHeader(http.StatusTooManyRequests)
			writeJSON(w, map[string]any{"error": map[string]any{"code": 429, "message": "quota exceeded"}})
			return
		}
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.appendCalls++
		f.rows = append(f.rows, body.Values...)
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-123"})
	case strings.Contains(path, "/values/"):
		writeJSON(w, map[string]any{"range": "Sheet1", "values": f.rows})
	case strings.HasPrefix(path, "/v4/spreadsheets/"):
		var sheets []map[string]any
		for _, title := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		writeJSON(w, map[string]any{"sheets": sheets})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newFake(t *testing.T) (*fakeGoogle, []option.ClientOption) {
	t.Helper()
	fake := &fakeGoogle{
		titles: []string{"Sheet1"},
		files:  map[string]string{"Insurance Leads": "sheet-123"},
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithHTTPClient(srv.Client()),
	}
}

var header = []string{"Timestamp", "Name", "Email", "Phone", "State", "Insurance_Type", "Notes", "Status", "Source"}

func TestConnectFindsSpreadsheetByNameAndWritesHeaderOnce(t *testing.T) {
	fake, opts := newFake(t)
	cfg := Config{SpreadsheetName: "Insurance Leads", WorksheetName: "Sheet1", Header: header}

	ws, err := Connect(context.Background(), cfg, logging.Discard(), opts...)
	require.NoError(t, err)
	assert.Equal(t, "sheet-123", ws.SpreadsheetID())
	assert.Equal(t, "Sheet1", ws.Title())
	assert.Contains(t, fake.lastQuery, "application/vnd.google-apps.spreadsheet")
	require.Len(t, fake.rows, 1)
	assert.Equal(t, "Timestamp", fake.rows[0][0])

	// a second process connecting to the same sheet must not duplicate the header
	_, err = Connect(context.Background(), cfg, logging.Discard(), opts...)
	require.NoError(t, err)
	assert.Len(t, fake.rows, 1)
	assert.Equal(t, 1, fake.appendCalls)
}

func TestAppendWritesRowInOrder(t *testing.T) {
	fake, opts := newFake(t)
	ws, err := Connect(context.Background(), Config{SpreadsheetID: "sheet-123", WorksheetName: "Sheet1"}, logging.Discard(), opts...)
	require.NoError(t, err)

	row := []string{"2025-01-01 10:00:00", "Jane Smith", "jane@example.com", "5085794251", "Massachusetts", "Medicare", "", "New", "Web Form"}
	require.NoError(t, ws.Append(context.Background(), row))

	require.Len(t, fake.rows, 1)
	assert.Equal(t, "Jane Smith", fake.rows[0][1])
	assert.Equal(t, "Web Form", fake.rows[0][8])
}

func TestConnectErrors(t *testing.T) {
	_, opts := newFake(t)
	ctx := context.Background()

	_, err := Connect(ctx, Config{SpreadsheetName: "Missing", WorksheetName: "Sheet1"}, logging.Discard(), opts...)
	assert.True(t, errors.Is(err, ErrSpreadsheetNotFound), "got %v", err)

	_, err = Connect(ctx, Config{SpreadsheetID: "sheet-123", WorksheetName: "Leads"}, logging.Discard(), opts...)
	assert.True(t, errors.Is(err, ErrWorksheetNotFound), "got %v", err)

	_, err = Connect(ctx, Config{SpreadsheetID: "sheet-123"}, logging.Discard(), opts...)
	assert.Error(t, err)

	_, err = Connect(ctx, Config{SpreadsheetID: "sheet-123", WorksheetName: "Sheet1", CredentialsJSON: []byte("not json")}, logging.Discard(), opts...)
	assert.ErrorContains(t, err, "parse service account")
}

func TestAppendSurfacesAPIStatus(t *testing.T) {
	fake, opts := newFake(t)
	ws, err := Connect(context.Background(), Config{SpreadsheetID: "sheet-123", WorksheetName: "Sheet1"}, logging.Discard(), opts...)
	require.NoError(t, err)

	fake.mu.Lock()
	fake.failAppend = true
	fake.mu.Unlock()

	err = ws.Append(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
