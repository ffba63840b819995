package nasdaq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundwatch/internal/contracts"
	"github.com/wonny/fundwatch/pkg/config"
	"github.com/wonny/fundwatch/pkg/httputil"
	"github.com/wonny/fundwatch/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.Nop()
	httpClient := httputil.New(log).DisableRetry()
	return NewClient(httpClient, config.NasdaqConfig{BaseURL: srv.URL}, log)
}

func TestFetchHoldings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/company/AAPL/institutional-holdings", r.URL.Path)
		assert.Equal(t, "TOTAL", r.URL.Query().Get("type"))
		assert.Equal(t, "marketValue", r.URL.Query().Get("sortColumn"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"holdingsTransactions": {
					"table": {
						"rows": [
							{"ownerName": "VANGUARD GROUP INC", "sharesHeld": "1,283,456,789", "marketValue": "$245,000,000,000"},
							{"ownerName": "BLACKROCK INC.", "sharesHeld": "1,039,000,000", "marketValue": "$198,500,000,000"},
							{"ownerName": "", "sharesHeld": "1", "marketValue": "$1"}
						]
					}
				}
			},
			"status": {"rCode": 200}
		}`))
	})

	records, err := client.FetchHoldings(context.Background(), "aapl")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "VANGUARD GROUP INC", records[0].OwnerName)
	assert.Equal(t, "$245,000,000,000", records[0].MarketValueRaw)
	assert.Equal(t, "BLACKROCK INC.", records[1].OwnerName)
}

func TestFetchHoldingsNoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": null, "status": {"rCode": 200}}`))
	})

	_, err := client.FetchHoldings(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrUnavailable))
}

func TestFetchHoldingsBadStatusCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {}, "status": {"rCode": 400}}`))
	})

	_, err := client.FetchHoldings(context.Background(), "BAD")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrUnavailable))
}
