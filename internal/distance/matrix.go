// Package distance looks up driving distances between postal codes.
package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cashcarbc/voice-intake/pkg/logging"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"
	defaultTimeout = 5 * time.Second
	// DefaultRegionSuffix scopes bare postal codes to the service area.
	DefaultRegionSuffix = ", BC, Canada"

	errMissingKey = "Missing GOOGLE_MAPS_API_KEY"
)

// Result is the outcome of a lookup. A failed lookup has OK false and a
// short reason in Error.
type Result struct {
	OK    bool    `json:"ok"`
	Km    float64 `json:"km"`
	Error string  `json:"error,omitempty"`
}

// Lookup returns the driving distance from origin to dest.
type Lookup interface {
	Lookup(ctx context.Context, origin, dest string) Result
}

// MatrixClient calls the Google Distance Matrix API.
type MatrixClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	regionSuffix string
	logger       *logging.Logger
}

// NewMatrixClient constructs a Distance Matrix client. An empty baseURL uses
// the public Google endpoint.
func NewMatrixClient(baseURL, apiKey string, logger *logging.Logger) *MatrixClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatrixClient{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       strings.TrimSpace(apiKey),
		regionSuffix: DefaultRegionSuffix,
		logger:       logger,
	}
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance *struct {
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Lookup asks for the metric driving distance and rounds it to 0.1 km.
func (c *MatrixClient) Lookup(ctx context.Context, origin, dest string) Result {
	if c.apiKey == "" {
		return Result{Error: errMissingKey}
	}

	q := url.Values{}
	q.Set("origins", origin+c.regionSuffix)
	q.Set("destinations", dest+c.regionSuffix)
	q.Set("mode", "driving")
	q.Set("units", "metric")
	q.Set("key", c.apiKey)
	endpoint := c.baseURL + "/maps/api/distancematrix/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("distance matrix request failed", "error", err)
		return Result{Error: fmt.Sprintf("http request: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Error: fmt.Sprintf("read response: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("distance matrix non-2xx response", "status", resp.StatusCode)
		return Result{Error: fmt.Sprintf("DistanceMatrix http=%d", resp.StatusCode)}
	}

	var decoded matrixResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{Error: fmt.Sprintf("decode response: %v", err)}
	}
	if len(decoded.Rows) == 0 || len(decoded.Rows[0].Elements) == 0 {
		return Result{Error: "DistanceMatrix status=unknown"}
	}
	element := decoded.Rows[0].Elements[0]
	if element.Status != "OK" {
		status := element.Status
		if status == "" {
			status = "unknown"
		}
		return Result{Error: "DistanceMatrix status=" + status}
	}
	if element.Distance == nil {
		return Result{Error: "No distance value"}
	}
	return Result{OK: true, Km: math.Round(element.Distance.Value/100) / 10}
}
