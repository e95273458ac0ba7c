package geocoding

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// newTestServer поднимает фейковый геокодер и считает обращения к нему
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGeocode_Success(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{
		"status": "OK",
		"results": [{"geometry": {"location": {"lat": 37.42, "lng": -122.08}}}]
	}`)
	client := NewClient(srv.URL, "test-key", time.Second, newTestLogger())

	lat, lng := client.Geocode(context.Background(), "  1600 Amphitheatre Parkway  ")

	require.NotNil(t, lat)
	require.NotNil(t, lng)
	assert.InDelta(t, 37.42, *lat, 1e-9)
	assert.InDelta(t, -122.08, *lng, 1e-9)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGeocode_SendsTrimmedAddress(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("address")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()
	client := NewClient(srv.URL, "test-key", time.Second, newTestLogger())

	client.Geocode(context.Background(), "  Main St & 5th Ave ")

	assert.Equal(t, "Main St & 5th Ave", got)
}

func TestGeocode_EmptyAddressMakesNoCall(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{}`)
	client := NewClient(srv.URL, "test-key", time.Second, newTestLogger())

	lat, lng := client.Geocode(context.Background(), "   ")

	assert.Nil(t, lat)
	assert.Nil(t, lng)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGeocode_MissingAPIKeyMakesNoCall(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{}`)
	client := NewClient(srv.URL, "", time.Second, newTestLogger())

	lat, lng := client.Geocode(context.Background(), "City Hall")

	assert.Nil(t, lat)
	assert.Nil(t, lng)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGeocode_FailuresReturnNilPair(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"zero results", http.StatusOK, `{"status": "ZERO_RESULTS", "results": []}`},
		{"over query limit", http.StatusOK, `{"status": "OVER_QUERY_LIMIT", "results": []}`},
		{"request denied", http.StatusOK, `{"status": "REQUEST_DENIED", "error_message": "bad key"}`},
		{"unknown status", http.StatusOK, `{"status": "INVALID_REQUEST"}`},
		{"ok without results", http.StatusOK, `{"status": "OK", "results": []}`},
		{"missing geometry", http.StatusOK, `{"status": "OK", "results": [{"formatted_address": "x"}]}`},
		{"malformed json", http.StatusOK, `{"status": `},
		{"http error", http.StatusInternalServerError, `oops`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tc.status, tc.body)
			client := NewClient(srv.URL, "test-key", time.Second, newTestLogger())

			lat, lng := client.Geocode(context.Background(), "Somewhere")

			assert.Nil(t, lat)
			assert.Nil(t, lng)
		})
	}
}

func TestGeocode_TimeoutReturnsNilPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status": "OK"}`))
	}))
	defer srv.Close()
	client := NewClient(srv.URL, "test-key", 20*time.Millisecond, newTestLogger())

	lat, lng := client.Geocode(context.Background(), "Slow Street")

	assert.Nil(t, lat)
	assert.Nil(t, lng)
}

func TestGeocode_TransportErrorReturnsNilPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()
	client := NewClient(url, "test-key", time.Second, newTestLogger())

	lat, lng := client.Geocode(context.Background(), "Closed Street")

	assert.Nil(t, lat)
	assert.Nil(t, lng)
}

func TestReverseGeocode_Success(t *testing.T) {
	var latlng string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		latlng = r.URL.Query().Get("latlng")
		_, _ = w.Write([]byte(`{"status": "OK", "results": [{"formatted_address": "1 City Hall Sq"}]}`))
	}))
	defer srv.Close()
	client := NewClient(srv.URL, "test-key", time.Second, newTestLogger())

	address := client.ReverseGeocode(context.Background(), 42.5, -71.25)

	require.NotNil(t, address)
	assert.Equal(t, "1 City Hall Sq", *address)
	assert.Equal(t, "42.500000,-71.250000", latlng)
}

func TestReverseGeocode_Failures(t *testing.T) {
	t.Run("no api key", func(t *testing.T) {
		srv, calls := newTestServer(t, http.StatusOK, `{}`)
		client := NewClient(srv.URL, "", time.Second, newTestLogger())
		assert.Nil(t, client.ReverseGeocode(context.Background(), 1, 2))
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("zero results", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `{"status": "ZERO_RESULTS", "results": []}`)
		client := NewClient(srv.URL, "test-key", time.Second, newTestLogger())
		assert.Nil(t, client.ReverseGeocode(context.Background(), 1, 2))
	})

	t.Run("malformed json", func(t *testing.T) {
		srv, _ := newTestServer(t, http.StatusOK, `not json`)
		client := NewClient(srv.URL, "test-key", time.Second, newTestLogger())
		assert.Nil(t, client.ReverseGeocode(context.Background(), 1, 2))
	})
}

func TestLookup_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()
	client := NewClient(endpoint, "SUPER-SECRET-KEY", time.Second, newTestLogger())

	_, err := client.lookup(context.Background(), url.Values{"address": {"City Hall"}})

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPER-SECRET-KEY")
}
