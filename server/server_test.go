package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopmetrics/storecast"
	"github.com/shopmetrics/storecast/salesdata"
	"github.com/shopmetrics/storecast/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, history store.SalesHistory) (*Server, *store.MemoryDirectory) {
	t.Helper()

	directory := store.NewMemoryDirectory()
	if history == nil {
		history = &store.SyntheticHistory{Seed: 42}
	}
	s, err := New(Config{Addr: ":0"}, directory, history, nil, nil)
	require.NoError(t, err)
	return s, directory
}

func seedBusiness(t *testing.T, directory *store.MemoryDirectory) *store.Business {
	t.Helper()
	b := &store.Business{
		OwnerID:      1,
		Name:         "Acme Outfitters",
		PlatformType: "shopify",
		PlatformURL:  "acme.myshopify.com",
	}
	require.NoError(t, directory.Save(context.Background(), b))
	return b
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestBusinessCRUD(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/businesses",
		`{"owner_id":1,"name":"Acme","platform_type":"shopify","platform_url":"acme.myshopify.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created store.Business
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	rec = doJSON(t, h, http.MethodGet, "/businesses/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/businesses/1", `{"name":"Acme EU"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated store.Business
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Acme EU", updated.Name)
	assert.Equal(t, "shopify", updated.PlatformType)

	rec = doJSON(t, h, http.MethodGet, "/businesses?owner_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Businesses []store.Business `json:"businesses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Businesses, 1)

	rec = doJSON(t, h, http.MethodDelete, "/businesses/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/businesses/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBusinessValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	testData := map[string]struct {
		method  string
		path    string
		body    string
		expCode int
		expKind string
	}{
		"malformed body": {
			http.MethodPost, "/businesses", `{"name":`, http.StatusBadRequest, kindValidation,
		},
		"missing name": {
			http.MethodPost, "/businesses", `{"owner_id":1}`, http.StatusBadRequest, kindValidation,
		},
		"unknown business": {
			http.MethodGet, "/businesses/99", "", http.StatusNotFound, kindNotFound,
		},
		"delete unknown": {
			http.MethodDelete, "/businesses/99", "", http.StatusNotFound, kindNotFound,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, h, td.method, td.path, td.body)
			require.Equal(t, td.expCode, rec.Code)

			var errRes errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errRes))
			assert.Equal(t, td.expKind, errRes.Kind)
			assert.NotEmpty(t, errRes.Message)
		})
	}
}

func TestForecastEndpoint(t *testing.T) {
	s, directory := newTestServer(t, nil)
	seedBusiness(t, directory)
	h := s.Handler()

	testData := map[string]struct {
		body    string
		expDays int
	}{
		"explicit 7d":        {`{"timeframe":"7d"}`, 7},
		"empty body default": {"", 30},
		"unrecognized":       {`{"timeframe":"6mo"}`, 30},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/businesses/1/forecast", td.body)
			require.Equal(t, http.StatusOK, rec.Code)

			var res storecast.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			require.Len(t, res.Forecast, td.expDays)

			for _, p := range res.Forecast {
				assert.LessOrEqual(t, p.LowerBound, p.PredictedSales)
				assert.LessOrEqual(t, p.PredictedSales, p.UpperBound)
				assert.GreaterOrEqual(t, p.LowerBound, 0.0)
			}
		})
	}
}

func TestForecastEndpointErrors(t *testing.T) {
	history := store.NewStaticHistory()
	history.Put(2, salesdata.SyntheticConst(1, 500.0, time.Now().UTC()))

	s, directory := newTestServer(t, history)
	// business 1 has no series, business 2 has a one-day series
	seedBusiness(t, directory)
	seedBusiness(t, directory)

	h := s.Handler()

	testData := map[string]struct {
		path    string
		expCode int
		expKind string
	}{
		"unknown business": {"/businesses/99/forecast", http.StatusNotFound, kindNotFound},
		"upstream failure": {"/businesses/1/forecast", http.StatusBadGateway, kindUpstream},
		"degenerate data":  {"/businesses/2/forecast", http.StatusUnprocessableEntity, kindModelFit},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, td.path, `{"timeframe":"7d"}`)
			require.Equal(t, td.expCode, rec.Code)

			var errRes errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errRes))
			assert.Equal(t, td.expKind, errRes.Kind)
		})
	}
}

func TestForecastReportEndpoint(t *testing.T) {
	s, directory := newTestServer(t, nil)
	seedBusiness(t, directory)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodGet, "/businesses/1/forecast/report?timeframe=7d&format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 8)

	rec = doJSON(t, h, http.MethodGet, "/businesses/1/forecast/report?format=bad", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeEndpoint(t *testing.T) {
	s, directory := newTestServer(t, nil)
	seedBusiness(t, directory)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/businesses/1/optimize", `{"optimization_type":"pricing"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		BusinessID  int64             `json:"business_id"`
		Suggestions map[string]string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(1), res.BusinessID)
	assert.NotEmpty(t, res.Suggestions["pricing"])

	rec = doJSON(t, h, http.MethodPost, "/businesses/99/optimize", `{"optimization_type":"seo"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
