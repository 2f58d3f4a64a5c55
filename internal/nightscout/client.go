// Package nightscout provides a client for interacting with the Nightscout API
package nightscout

import (
	"crypto/sha1" //nolint:gosec // Required for Nightscout API secret hashing (legacy API requirement)
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mrcode/nightscout-report/internal/models"
)

// defaultFetchCount caps a single day query; generously above the ~288
// readings a 5-minute CGM produces per day.
const defaultFetchCount = 2000

// Client handles communication with the Nightscout API
type Client struct {
	baseURL    string
	apiSecret  string
	apiToken   string
	useToken   bool
	fetchCount int
	httpClient *http.Client
}

// NewClient creates a new Nightscout client. fetchCount <= 0 selects the
// default per-query cap.
func NewClient(baseURL, apiSecret, apiToken string, useToken bool, fetchCount int) *Client {
	if fetchCount <= 0 {
		fetchCount = defaultFetchCount
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiSecret:  apiSecret,
		apiToken:   apiToken,
		useToken:   useToken,
		fetchCount: fetchCount,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// hashSecret generates SHA1 hash of the API secret
// Note: SHA1 is required for Nightscout API compatibility
func hashSecret(secret string) string {
	hasher := sha1.New() //nolint:gosec // Required for Nightscout API
	hasher.Write([]byte(secret))
	return hex.EncodeToString(hasher.Sum(nil))
}

// buildRequest creates an HTTP request with proper authentication
func (c *Client) buildRequest(method, endpoint string, params url.Values) (*http.Request, error) {
	fullURL := c.baseURL + endpoint
	if params != nil {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequest(method, fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	// Add authentication
	if c.useToken && c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	} else if c.apiSecret != "" {
		req.Header.Set("API-SECRET", hashSecret(c.apiSecret))
	}

	return req, nil
}

// doRequest executes an HTTP request and returns the response body
func (c *Client) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// GetStatus retrieves the Nightscout server status
func (c *Client) GetStatus() (*models.ServerStatus, error) {
	req, err := c.buildRequest("GET", "/api/v1/status", nil)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var status models.ServerStatus
	if err := sonic.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("parsing status: %w", err)
	}

	return &status, nil
}

// GetEntries retrieves glucose entries whose dateString falls in the
// half-open interval [from, to).
func (c *Client) GetEntries(from, to time.Time) ([]models.GlucoseEntry, error) {
	params := url.Values{}
	params.Set("find[dateString][$gte]", from.Format(time.RFC3339))
	params.Set("find[dateString][$lt]", to.Format(time.RFC3339))
	params.Set("count", strconv.Itoa(c.fetchCount))

	req, err := c.buildRequest("GET", "/api/v1/entries.json", params)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var entries []models.GlucoseEntry
	if err := sonic.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing entries: %w", err)
	}

	return entries, nil
}

// GetTreatments retrieves treatments whose created_at falls in the
// half-open interval [from, to).
func (c *Client) GetTreatments(from, to time.Time) ([]models.Treatment, error) {
	params := url.Values{}
	params.Set("find[created_at][$gte]", from.Format(time.RFC3339))
	params.Set("find[created_at][$lt]", to.Format(time.RFC3339))
	params.Set("count", strconv.Itoa(c.fetchCount))

	req, err := c.buildRequest("GET", "/api/v1/treatments.json", params)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	var treatments []models.Treatment
	if err := sonic.Unmarshal(body, &treatments); err != nil {
		return nil, fmt.Errorf("parsing treatments: %w", err)
	}

	return treatments, nil
}

// FetchDay retrieves the readings and treatments for one local calendar
// day. day is "YYYY-MM-DD" interpreted in loc; the query window is the
// corresponding half-open UTC interval [00:00, next 00:00).
func (c *Client) FetchDay(day string, loc *time.Location) ([]models.GlucoseEntry, []models.Treatment, error) {
	start, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid date %q: %w", day, err)
	}
	end := start.AddDate(0, 0, 1)

	entries, err := c.GetEntries(start.UTC(), end.UTC())
	if err != nil {
		return nil, nil, fmt.Errorf("fetching entries: %w", err)
	}

	treatments, err := c.GetTreatments(start.UTC(), end.UTC())
	if err != nil {
		return nil, nil, fmt.Errorf("fetching treatments: %w", err)
	}

	slog.Debug("fetched day", "day", day, "entries", len(entries), "treatments", len(treatments))
	return entries, treatments, nil
}

// TestConnection tests if the connection to Nightscout works
func (c *Client) TestConnection() error {
	_, err := c.GetStatus()
	return err
}
