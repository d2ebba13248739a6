package sunweg

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthStatsQuery(t *testing.T) {
	assert.Equal(t, "usinas/graficomes?idusina=1&idinversor=&date=12/2023", monthStatsQuery(2023, 12, 1, nil))
	id := 21255
	assert.Equal(t, "usinas/graficomes?idusina=1&idinversor=21255&date=02/2024", monthStatsQuery(2024, 2, 1, &id))
}

func TestMonthStatsProduction_Success(t *testing.T) {
	api := newFakeAPI(t).on("usinas/graficomes", http.StatusOK, "month_stats_success_response.json")
	s := newTestService(t, api, "user@acme.com", "password")

	stats, err := s.MonthStatsProduction(context.Background(), 2023, 12, &model.Plant{ID: 1}, nil)
	require.NoError(t, err)

	q := api.lastRequest().URL.Query()
	assert.Equal(t, "1", q.Get("idusina"))
	assert.Equal(t, "", q.Get("idinversor"))
	assert.Equal(t, "12/2023", q.Get("date"))

	assert.Equal(t, []model.ProductionStats{
		{Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), Production: 12.5, Prognostic: 10},
		{Date: time.Date(2023, 12, 2, 0, 0, 0, 0, time.UTC), Production: 13.25, Prognostic: 10},
		{Date: time.Date(2023, 12, 3, 0, 0, 0, 0, time.UTC), Production: 0, Prognostic: 10.5},
	}, stats)
}

func TestMonthStatsProduction_Inverter(t *testing.T) {
	api := newFakeAPI(t).on("usinas/graficomes", http.StatusOK, "month_stats_success_response.json")
	s := newTestService(t, api, "user@acme.com", "password")

	_, err := s.MonthStatsProduction(context.Background(), 2024, 2, &model.Plant{ID: 1}, &model.Inverter{ID: 21255})
	require.NoError(t, err)

	q := api.lastRequest().URL.Query()
	assert.Equal(t, "21255", q.Get("idinversor"))
	assert.Equal(t, "02/2024", q.Get("date"))
}

func TestMonthStatsProduction_Fail(t *testing.T) {
	api := newFakeAPI(t).on("usinas/graficomes", http.StatusOK, "month_stats_fail_response.json")
	s := newTestService(t, api, "user@acme.com", "password")

	_, err := s.MonthStatsProductionByID(context.Background(), 2013, 12, 1, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Error message", err.Error())
}

func TestMonthStatsProduction_401(t *testing.T) {
	api := newFakeAPI(t).
		on(loginPath, http.StatusOK, "auth_success_response.json").
		on("usinas/graficomes", http.StatusUnauthorized, "")
	s := newTestService(t, api, "user@acme.com", "password")

	stats, err := s.MonthStatsProductionByID(context.Background(), 2023, 12, 1, nil)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}
