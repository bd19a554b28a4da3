package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single events request.
const DefaultTimeout = 10 * time.Second

const eventsPath = "/wp-json/wp/v2/events/"

// EventData is the event_data object returned by the events endpoint.
type EventData struct {
	StartDatetime flexString `json:"start_datetime"`
	EndDatetime   flexString `json:"end_datetime"`
	Venue         flexString `json:"venue"`
	Province      flexString `json:"province"`
	City          flexString `json:"city"`
	Address       flexString `json:"address"`
	PostalCode    flexString `json:"postal_code"`
	ICalSourceURL flexString `json:"ical_source_url"`
}

type eventResponse struct {
	EventData json.RawMessage `json:"event_data"`
}

// flexString accepts strings, numbers and null. Anything else decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return err
		}
		*f = flexString(data)
	default:
		*f = ""
	}
	return nil
}

func (f flexString) String() string {
	return strings.TrimSpace(string(f))
}

// Client fetches event details from a WordPress events REST endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a client for the site at baseURL. A non-positive timeout
// falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
	}
}

// FetchEvent issues exactly one GET for the event with the given record ID.
// The request is cancelled when the timeout elapses.
func (c *Client) FetchEvent(ctx context.Context, id string) (*EventData, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + eventsPath + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wp2md/1.0 (https://github.com/mrlokans/wp2md)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseShapeError{RecordID: id, StatusCode: resp.StatusCode, Reason: "non-OK status"}
	}

	var body eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, c.classify(id, err)
		}
		return nil, &ResponseShapeError{RecordID: id, StatusCode: resp.StatusCode, Reason: fmt.Sprintf("invalid body: %v", err)}
	}

	raw := bytes.TrimSpace(body.EventData)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, &ResponseShapeError{RecordID: id, StatusCode: resp.StatusCode, Reason: "missing event_data"}
	}

	var data EventData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &ResponseShapeError{RecordID: id, StatusCode: resp.StatusCode, Reason: fmt.Sprintf("invalid event_data: %v", err)}
	}
	return &data, nil
}

func (c *Client) classify(id string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{RecordID: id, Timeout: c.timeout, Err: err}
	}
	return &TransportError{RecordID: id, Err: err}
}
