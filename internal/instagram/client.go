package instagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"instagram-agent/internal/model"
)

// Result is the decoded Graph API response body. A nil Result means the
// call did not go through; callers treat that as "not sent" and log it,
// never retrying.
type Result map[string]interface{}

// API is the capability-scoped outbound client for one tenant's
// Instagram account.
type API interface {
	SendMessage(recipientID, text string) (Result, error)
	SendMedia(recipientID, mediaURL, mediaType string) (Result, error)
	ReplyToComment(commentID, text string) (Result, error)
}

// Factory builds an API bound to a tenant's credentials.
type Factory func(t *model.Tenant) API

// Client talks to the Instagram Graph API using a single tenant's
// access token and account id.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	tenantID    uint
	accessToken string
	accountID   string
}

// NewClient creates a Graph API client scoped to the tenant.
func NewClient(baseURL string, httpClient *http.Client, t *model.Tenant, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		log:         log.With(zap.Uint("tenant_id", t.ID)),
		tenantID:    t.ID,
		accessToken: t.AccessToken,
		accountID:   t.InstagramAccountID,
	}
}

// NewFactory returns a Factory producing clients for the given Graph
// API endpoint.
func NewFactory(baseURL string, httpClient *http.Client, log *zap.Logger) Factory {
	return func(t *model.Tenant) API {
		return NewClient(baseURL, httpClient, t, log)
	}
}

// SendMessage sends a text direct message.
func (c *Client) SendMessage(recipientID, text string) (Result, error) {
	endpoint := fmt.Sprintf("%s/messages", c.accountID)
	body := map[string]interface{}{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}

	result, err := c.request(http.MethodPost, endpoint, nil, body)
	if err != nil {
		return nil, err
	}
	c.log.Info("Message sent", zap.String("recipient_id", recipientID))
	return result, nil
}

// SendMedia sends a media attachment (image, video, audio or file) by
// public URL.
func (c *Client) SendMedia(recipientID, mediaURL, mediaType string) (Result, error) {
	endpoint := fmt.Sprintf("%s/messages", c.accountID)
	body := map[string]interface{}{
		"recipient": map[string]string{"id": recipientID},
		"message": map[string]interface{}{
			"attachment": map[string]interface{}{
				"type":    mediaType,
				"payload": map[string]string{"url": mediaURL},
			},
		},
	}

	result, err := c.request(http.MethodPost, endpoint, nil, body)
	if err != nil {
		return nil, err
	}
	c.log.Info("Media sent",
		zap.String("recipient_id", recipientID),
		zap.String("media_type", mediaType))
	return result, nil
}

// SendFile sends a document attachment.
func (c *Client) SendFile(recipientID, fileURL string) (Result, error) {
	return c.SendMedia(recipientID, fileURL, "file")
}

// SendAudio sends an audio attachment.
func (c *Client) SendAudio(recipientID, audioURL string) (Result, error) {
	return c.SendMedia(recipientID, audioURL, "audio")
}

// ReplyToComment posts a reply under a comment.
func (c *Client) ReplyToComment(commentID, text string) (Result, error) {
	endpoint := fmt.Sprintf("%s/replies", commentID)
	params := url.Values{}
	params.Set("message", text)

	result, err := c.request(http.MethodPost, endpoint, params, nil)
	if err != nil {
		return nil, err
	}
	c.log.Info("Comment reply sent", zap.String("comment_id", commentID))
	return result, nil
}

// GetCommentDetails fetches text, username, timestamp and media for a
// comment.
func (c *Client) GetCommentDetails(commentID string) (Result, error) {
	params := url.Values{}
	params.Set("fields", "text,username,timestamp,media")
	return c.request(http.MethodGet, commentID, params, nil)
}

func (c *Client) request(method, endpoint string, params url.Values, body interface{}) (Result, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.accessToken)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Graph API request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		c.log.Error("Graph API request rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("graph api: status %d: %s", resp.StatusCode, string(data))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}
