package twitterapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.twitter.com/2"
	pageSize       = 100
	maxBackoff     = 15 * time.Minute
)

var ErrUserNotFound = errors.New("user not found")

// APIError is a non-recoverable response from the remote API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter api returned status %d: %s", e.Status, e.Body)
}

// doer is the subset of httpclient.Client the API client needs.
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches user timelines from the Twitter v2 API. Rate-limit
// backoff is handled internally: a 429 response blocks until the window
// resets and the request is retried.
type Client struct {
	baseURL string
	http    doer
}

// New creates a timeline client from an authenticated HTTP client.
func New(httpClient doer) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    httpClient,
	}
}

// UserID resolves a username (with or without a leading @) to the
// account's stable identifier.
func (c *Client) UserID(ctx context.Context, username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return "", fmt.Errorf("empty username")
	}

	var resp userResponse
	endpoint := fmt.Sprintf("%s/users/by/username/%s", c.baseURL, url.PathEscape(username))
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}

	if resp.Data == nil {
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return resp.Data.ID, nil
}

// UserTweets fetches the user's posts within [start, end], paginating
// until the API is exhausted or limit posts have been yielded. A limit
// of zero means no limit.
func (c *Client) UserTweets(ctx context.Context, username string, start, end time.Time, limit int) ([]RawTweet, error) {
	userID, err := c.UserID(ctx, username)
	if err != nil {
		return nil, err
	}

	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	var (
		out       []RawTweet
		nextToken string
	)

	for {
		endpoint, err := c.timelineURL(userID, start, end, nextToken)
		if err != nil {
			return nil, err
		}

		var page timelineResponse
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, fmt.Errorf("fetch timeline page: %w", err)
		}

		media := make(map[string]wireMedia, len(page.Includes.Media))
		for _, m := range page.Includes.Media {
			media[m.MediaKey] = m
		}

		for _, wt := range page.Data {
			out = append(out, flattenTweet(wt, media, username))
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}

		if page.Meta.NextToken == "" {
			return out, nil
		}
		nextToken = page.Meta.NextToken
	}
}

func (c *Client) timelineURL(userID string, start, end time.Time, nextToken string) (string, error) {
	u, err := url.Parse(fmt.Sprintf("%s/users/%s/tweets", c.baseURL, userID))
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("max_results", strconv.Itoa(pageSize))
	q.Set("tweet.fields", "id,text,created_at,author_id,conversation_id,in_reply_to_user_id,referenced_tweets,attachments")
	q.Set("media.fields", "type,url,variants,duration_ms")
	q.Set("expansions", "attachments.media_keys,referenced_tweets.id")
	if !start.IsZero() {
		q.Set("start_time", start.UTC().Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("end_time", end.UTC().Format(time.RFC3339))
	}
	if nextToken != "" {
		q.Set("pagination_token", nextToken)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// getJSON performs a GET and decodes the JSON body, retrying after the
// advertised reset window on 429 responses.
func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.Unmarshal(body, v)
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := backoffDelay(resp.Header)
			log.Printf("Rate limited by API, waiting %s", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		case resp.StatusCode == http.StatusNotFound:
			return ErrUserNotFound
		default:
			return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
	}
}

// backoffDelay derives the wait before retrying a rate-limited request
// from the response headers, capped at maxBackoff.
func backoffDelay(h http.Header) time.Duration {
	if reset := h.Get("x-rate-limit-reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if d := time.Until(time.Unix(epoch, 0)); d > 0 {
				return min(d+time.Second, maxBackoff)
			}
		}
	}
	if after := h.Get("Retry-After"); after != "" {
		if secs, err := strconv.Atoi(after); err == nil && secs > 0 {
			return min(time.Duration(secs)*time.Second, maxBackoff)
		}
	}
	return time.Minute
}

// flattenTweet collapses one wire tweet plus the page's media includes
// into the flat payload shape the extractor consumes.
func flattenTweet(wt wireTweet, media map[string]wireMedia, username string) RawTweet {
	raw := RawTweet{
		ID:             wt.ID,
		Author:         username,
		Text:           wt.Text,
		Datetime:       wt.CreatedAt,
		URL:            fmt.Sprintf("https://x.com/%s/status/%s", username, wt.ID),
		IsReply:        wt.InReplyToUserID != "",
		ConversationID: wt.ConversationID,
	}

	for _, ref := range wt.ReferencedTweets {
		switch ref.Type {
		case "replied_to":
			raw.ReplyToID = ref.ID
		case "retweeted":
			raw.IsRetweet = true
		}
	}

	for _, key := range wt.Attachments.MediaKeys {
		m, ok := media[key]
		if !ok || m.Type != "video" {
			continue
		}
		raw.HasVideo = true
		raw.VideoURL = bestVariantURL(m)
		break
	}

	return raw
}

// bestVariantURL picks the highest-bitrate mp4 variant.
func bestVariantURL(m wireMedia) string {
	var mp4s []struct {
		ContentType string `json:"content_type"`
		BitRate     int    `json:"bit_rate"`
		URL         string `json:"url"`
	}
	for _, v := range m.Variants {
		if v.ContentType == "video/mp4" {
			mp4s = append(mp4s, v)
		}
	}
	if len(mp4s) == 0 {
		return ""
	}
	sort.Slice(mp4s, func(i, j int) bool { return mp4s[i].BitRate > mp4s[j].BitRate })
	return mp4s[0].URL
}

// UsernameFromURL extracts the account handle from an x.com or
// twitter.com profile URL.
func UsernameFromURL(profileURL string) (string, error) {
	trimmed := strings.TrimRight(profileURL, "/")
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if (part == "x.com" || part == "twitter.com") && i+1 < len(parts) {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("could not extract username from URL: %s", profileURL)
}
