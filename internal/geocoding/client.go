package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/metrics"
)

// Статусы ответа Google Geocoding API
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusRequestDenied  = "REQUEST_DENIED"
)

// Client - клиент сервиса геокодирования адресов.
// Любая ошибка превращается в пустой результат, наружу ничего не пробрасывается.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient создает клиента; пустой apiKey отключает обращения к сервису
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress *string `json:"formatted_address"`
		Geometry         *struct {
			Location *struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode переводит адрес в координаты. (nil, nil) при пустом адресе, отсутствии ключа или любой ошибке.
func (c *Client) Geocode(ctx context.Context, address string) (*float64, *float64) {
	address = strings.TrimSpace(address)
	log := c.logger.WithFields(logrus.Fields{
		"component": "geocoding",
		"method":    "Geocode",
		"address":   address,
	})

	if address == "" {
		log.Warn("Empty address provided for geocoding")
		metrics.GeocodeRequests.WithLabelValues("forward", "skipped").Inc()
		return nil, nil
	}
	if c.apiKey == "" {
		log.Warn("Maps API key not configured, skipping geocoding")
		metrics.GeocodeRequests.WithLabelValues("forward", "skipped").Inc()
		return nil, nil
	}

	params := url.Values{}
	params.Set("address", address)
	data, err := c.lookup(ctx, params)
	if err != nil {
		c.logLookupError(log, err)
		metrics.GeocodeRequests.WithLabelValues("forward", "error").Inc()
		return nil, nil
	}

	if data.Status != statusOK || len(data.Results) == 0 {
		c.logStatus(log, data)
		metrics.GeocodeRequests.WithLabelValues("forward", outcomeLabel(data)).Inc()
		return nil, nil
	}

	first := data.Results[0]
	if first.Geometry == nil || first.Geometry.Location == nil ||
		first.Geometry.Location.Lat == nil || first.Geometry.Location.Lng == nil {
		log.Error("Unexpected response format from geocoding API: missing geometry.location")
		metrics.GeocodeRequests.WithLabelValues("forward", "error").Inc()
		return nil, nil
	}

	lat, lng := *first.Geometry.Location.Lat, *first.Geometry.Location.Lng
	log.WithFields(logrus.Fields{"latitude": lat, "longitude": lng}).Info("Address geocoded")
	metrics.GeocodeRequests.WithLabelValues("forward", "ok").Inc()
	return &lat, &lng
}

// ReverseGeocode переводит координаты в адрес; nil при любой ошибке
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) *string {
	log := c.logger.WithFields(logrus.Fields{
		"component": "geocoding",
		"method":    "ReverseGeocode",
		"latitude":  latitude,
		"longitude": longitude,
	})

	if c.apiKey == "" {
		log.Warn("Maps API key not configured, skipping reverse geocoding")
		metrics.GeocodeRequests.WithLabelValues("reverse", "skipped").Inc()
		return nil
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", latitude, longitude))
	data, err := c.lookup(ctx, params)
	if err != nil {
		c.logLookupError(log, err)
		metrics.GeocodeRequests.WithLabelValues("reverse", "error").Inc()
		return nil
	}

	if data.Status != statusOK || len(data.Results) == 0 || data.Results[0].FormattedAddress == nil {
		log.WithField("status", data.Status).Error("Reverse geocoding failed")
		metrics.GeocodeRequests.WithLabelValues("reverse", outcomeLabel(data)).Inc()
		return nil
	}

	address := *data.Results[0].FormattedAddress
	log.WithField("address", address).Info("Coordinates reverse geocoded")
	metrics.GeocodeRequests.WithLabelValues("reverse", "ok").Inc()
	return &address
}

func (c *Client) lookup(ctx context.Context, params url.Values) (*geocodeResponse, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoding url: %w", err)
	}
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error содержит адрес запроса вместе с ключом
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, urlErr.Err
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocoding status %d", resp.StatusCode)
	}

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return &data, nil
}

var errInvalidJSON = errors.New("invalid JSON response from geocoding API")

func (c *Client) logLookupError(log *logrus.Entry, err error) {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		log.WithError(err).Error("Geocoding request timed out")
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).Error("Geocoding request timed out")
	case errors.Is(err, errInvalidJSON):
		log.WithError(err).Error("Invalid JSON response from geocoding API")
	default:
		log.WithError(err).Error("Network error during geocoding")
	}
}

func (c *Client) logStatus(log *logrus.Entry, data *geocodeResponse) {
	log = log.WithField("status", data.Status)
	switch data.Status {
	case statusOK, statusZeroResults:
		log.Warn("No results found for address")
	case statusOverQueryLimit:
		log.Error("Geocoding API query limit exceeded")
	case statusRequestDenied:
		log.WithField("error_message", data.ErrorMessage).Error("Geocoding API request denied, check API key")
	default:
		log.WithField("error_message", data.ErrorMessage).Error("Geocoding failed")
	}
}

func outcomeLabel(data *geocodeResponse) string {
	switch {
	case data.Status == "":
		return "unknown"
	case data.Status == statusOK:
		return "zero_results"
	default:
		return strings.ToLower(data.Status)
	}
}
