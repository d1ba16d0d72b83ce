// ABOUTME: Push notification topics and the subscription endpoint client.
// ABOUTME: Topics are alarm_<HH>; the dispatch job runs on a fixed +9h clock.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultHour is the topic hour used when none is given.
const DefaultHour = "08"

// DispatchOffset is the fixed offset of the dispatch job's clock from UTC.
const DispatchOffset = 9 * time.Hour

// ErrMissingToken is returned when subscribing without a push token.
var ErrMissingToken = errors.New("missing token")

// TopicForHour returns the topic for a two-digit hour, defaulting to DefaultHour.
func TopicForHour(hour string) string {
	if hour == "" {
		hour = DefaultHour
	}
	return "alarm_" + hour
}

// DispatchTopic returns the topic the hourly dispatch job targets at now.
func DispatchTopic(now time.Time) string {
	return TopicForHour(fmt.Sprintf("%02d", now.UTC().Add(DispatchOffset).Hour()))
}

// HourFromTime extracts the hour part of an HH:MM time or a bare HH and
// normalizes it to two digits.
func HourFromTime(s string) (string, error) {
	h, _, _ := strings.Cut(strings.TrimSpace(s), ":")
	n, err := strconv.Atoi(h)
	if err != nil || n < 0 || n > 23 {
		return "", fmt.Errorf("invalid hour %q", s)
	}
	return fmt.Sprintf("%02d", n), nil
}

// Client posts subscriptions to the notification endpoint.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// NewClient creates a subscription client for url.
func NewClient(url string) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type subscribeRequest struct {
	Token string `json:"token"`
	Time  string `json:"time,omitempty"`
}

type subscribeResponse struct {
	Success bool   `json:"success"`
	Topic   string `json:"topic"`
	Error   string `json:"error"`
}

// Subscribe registers token for the given hour's topic and returns the topic
// the endpoint confirmed.
func (c *Client) Subscribe(ctx context.Context, token, hour string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	body, err := json.Marshal(subscribeRequest{Token: token, Time: hour})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("subscribe: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var out subscribeResponse
	_ = json.Unmarshal(data, &out)

	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return "", fmt.Errorf("subscribe failed (%s): %s", resp.Status, msg)
	}
	if out.Topic == "" {
		out.Topic = TopicForHour(hour)
	}
	return out.Topic, nil
}
