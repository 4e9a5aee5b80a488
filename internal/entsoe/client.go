package entsoe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/internal/logger"
	"github.com/AntonioPavoni/EuropeanEnergyAnalysis/pkg/models"
)

const (
	documentTypeActualGeneration = "A75"
	processTypeRealised          = "A16"
	periodLayout                 = "200601021504"
	maxErrorBody                 = 512
)

// AuthError represents a rejected security token
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Client queries the ENTSO-E Transparency Platform
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient returns the single HTTP client shared by all queries of a run
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// NewClient creates a Transparency Platform client
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(60 * time.Second)
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// QueryGeneration fetches actual generation per production type for area in [start, end)
func (c *Client) QueryGeneration(ctx context.Context, area Area, start, end time.Time) ([]models.GenerationRecord, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("invalid window: %s is not after %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	params := url.Values{}
	params.Set("securityToken", c.token)
	params.Set("documentType", documentTypeActualGeneration)
	params.Set("processType", processTypeRealised)
	params.Set("in_Domain", area.EIC)
	params.Set("periodStart", start.UTC().Format(periodLayout))
	params.Set("periodEnd", end.UTC().Format(periodLayout))

	logger.Debugf(ctx, "querying generation for %s from %s to %s", area.Code,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	records, err := ParseGenerationDocument(area.Code, body)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, err
		}
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return records, nil
}

// LatestDataTime returns the most recent timestamp with published generation data
// within lookback of now.
func (c *Client) LatestDataTime(ctx context.Context, area Area, now time.Time, lookback time.Duration) (time.Time, error) {
	records, err := c.QueryGeneration(ctx, area, now.Add(-lookback), now)
	if err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	for _, r := range records {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	if latest.IsZero() {
		return time.Time{}, ErrNoData
	}
	return latest, nil
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", redactToken(err, c.token))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("authentication failed (status %d): check the security token", resp.StatusCode),
		}
	}

	// The platform reports "no data" as an acknowledgement document, sometimes with 400
	if resp.StatusCode == http.StatusBadRequest {
		if _, ackErr := ParseGenerationDocument("", body); ackErr != nil {
			var ack *AcknowledgementError
			if errors.As(ackErr, &ack) {
				return nil, ack
			}
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, excerpt(body))
	}

	return body, nil
}

// redactToken strips the security token from url.Error messages
func redactToken(err error, token string) error {
	var uerr *url.Error
	if token != "" && errors.As(err, &uerr) {
		u, perr := url.Parse(uerr.URL)
		if perr == nil {
			q := u.Query()
			q.Set("securityToken", "REDACTED")
			u.RawQuery = q.Encode()
			return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
		}
	}
	return err
}

func excerpt(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
