package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchGetValues_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/spreadsheets/sheet-123/values:batchGet", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "FORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))
		assert.Equal(t, []string{"MG!A1:E50", "Citroen!A1:E50"}, r.URL.Query()["ranges"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(BatchGetResponse{
			SpreadsheetID: "sheet-123",
			ValueRanges: []ValueRange{
				{
					Range:  "MG!A1:E50",
					Values: [][]string{{"Model", "Engine"}, {"MG HS", "1.5T"}},
				},
				{
					Range: "Citroen!A1:E50",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.BatchGetValues(context.Background(), "sheet-123", []string{"MG!A1:E50", "Citroen!A1:E50"})

	require.NoError(t, err)
	require.Len(t, resp.ValueRanges, 2)
	assert.Equal(t, "MG HS", resp.ValueRanges[0].Values[1][0])
	assert.Empty(t, resp.ValueRanges[1].Values)
}

func TestBatchGetValues_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "API key invalid"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.BatchGetValues(context.Background(), "sheet-123", []string{"A1:B2"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")
}

func TestBatchGetValues_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.BatchGetValues(ctx, "sheet-123", []string{"A1:B2"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}
