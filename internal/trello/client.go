// Package trello creates and updates task-board cards for new RTA intakes.
package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/autorta/rta-filler/internal/metrics"
)

const (
	// DefaultBaseURL is the task-board REST root
	DefaultBaseURL = "https://api.trello.com/1"
	// DefaultCardsURL is the endpoint receiving new cards
	DefaultCardsURL = DefaultBaseURL + "/cards"

	maxErrorBody = 500
	redactedText = "***"
)

// ErrNotConfigured is returned when key, token or list id is missing.
var ErrNotConfigured = errors.New("task board credentials not configured (TRELLO_KEY/TRELLO_TOKEN/TRELLO_ID_LIST)")

// UpstreamError reports a non-2xx answer from the task board.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("task board returned %d", e.Status)
}

// Detail returns the upstream body as JSON when it parses, otherwise as text.
func (e *UpstreamError) Detail() any {
	var detail any
	if err := json.Unmarshal([]byte(e.Body), &detail); err == nil {
		return detail
	}
	return map[string]string{"text": e.Body}
}

// Card is a card to create.
type Card struct {
	Name string
	Desc string
}

// CardInfo is the subset of a stored card the service reads back.
type CardInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	ShortURL string `json:"shortUrl"`
	IDList   string `json:"idList"`
}

// Attachment is the task board's answer to an upload.
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Bytes    int64  `json:"bytes"`
}

// AuthStatus reports whether the credentials and list are usable.
type AuthStatus struct {
	OK         bool   `json:"ok"`
	MeOK       bool   `json:"me_ok"`
	MeStatus   int    `json:"me_status"`
	Member     string `json:"member,omitempty"`
	ListOK     *bool  `json:"list_ok"`
	ListStatus *int   `json:"list_status"`
	ListName   string `json:"list_name,omitempty"`
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithBaseURL overrides the REST root used for everything except card creation.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithCardsURL overrides the card creation endpoint.
func WithCardsURL(cardsURL string) Option {
	return func(c *Client) {
		if cardsURL != "" {
			c.cardsURL = cardsURL
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the task-board REST API.
type Client struct {
	key        string
	token      string
	listID     string
	baseURL    string
	cardsURL   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client. Missing credentials are reported per call, so
// the HTTP surface can answer with a configuration error.
func NewClient(key, token, listID string, opts ...Option) *Client {
	c := &Client{
		key:        key,
		token:      token,
		listID:     listID,
		baseURL:    DefaultBaseURL,
		cardsURL:   DefaultCardsURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether key, token and list id are all set.
func (c *Client) Configured() bool {
	return c.key != "" && c.token != "" && c.listID != ""
}

// CreateCard adds a card to the configured list and returns its id.
func (c *Client) CreateCard(ctx context.Context, card Card) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	form := url.Values{}
	form.Set("idList", c.listID)
	form.Set("name", card.Name)
	form.Set("desc", card.Desc)

	var created CardInfo
	if err := c.do(ctx, "create_card", http.MethodPost, c.cardsURL, form, nil, "", &created); err != nil {
		return "", err
	}

	c.logger.Info("Task board card created", zap.String("card_id", created.ID), zap.String("name", card.Name))
	return created.ID, nil
}

// GetCard fetches a card by id.
func (c *Client) GetCard(ctx context.Context, cardID string) (*CardInfo, error) {
	if cardID == "" {
		return nil, eris.New("card id is required")
	}
	if !c.hasCredentials() {
		return nil, ErrNotConfigured
	}

	var card CardInfo
	if err := c.do(ctx, "get_card", http.MethodGet, c.baseURL+"/cards/"+url.PathEscape(cardID), nil, nil, "", &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateDescription replaces the description of a card.
func (c *Client) UpdateDescription(ctx context.Context, cardID, desc string) error {
	if cardID == "" {
		return eris.New("card id is required")
	}
	if !c.hasCredentials() {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("desc", desc)
	return c.do(ctx, "update_card", http.MethodPut, c.baseURL+"/cards/"+url.PathEscape(cardID), form, nil, "", nil)
}

// AttachFile uploads data as a file attachment of a card.
func (c *Client) AttachFile(ctx context.Context, cardID, filename string, data []byte) (*Attachment, error) {
	if cardID == "" {
		return nil, eris.New("card id is required")
	}
	if !c.hasCredentials() {
		return nil, ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, eris.Wrap(err, "failed to build attachment")
	}
	if _, err := part.Write(data); err != nil {
		return nil, eris.Wrap(err, "failed to build attachment")
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "failed to build attachment")
	}

	var att Attachment
	endpoint := c.baseURL + "/cards/" + url.PathEscape(cardID) + "/attachments"
	if err := c.do(ctx, "attach_file", http.MethodPost, endpoint, nil, &body, mw.FormDataContentType(), &att); err != nil {
		return nil, err
	}

	c.logger.Info("File attached to task board card",
		zap.String("card_id", cardID),
		zap.String("file", filename),
		zap.Int("size", len(data)))
	return &att, nil
}

// AuthCheck verifies the credentials against the member endpoint and, when a
// list is configured, that the list is reachable. Only transport failures
// are returned as errors; rejected credentials show up in the status.
func (c *Client) AuthCheck(ctx context.Context) (*AuthStatus, error) {
	if !c.hasCredentials() {
		return nil, ErrNotConfigured
	}

	status := &AuthStatus{}

	var member struct {
		Username string `json:"username"`
	}
	code, err := c.probe(ctx, c.baseURL+"/members/me", &member)
	if err != nil {
		return nil, err
	}
	status.MeStatus = code
	status.MeOK = success(code)
	status.Member = member.Username

	if c.listID != "" {
		var list struct {
			Name string `json:"name"`
		}
		code, err := c.probe(ctx, c.baseURL+"/lists/"+url.PathEscape(c.listID), &list)
		if err != nil {
			return nil, err
		}
		ok := success(code)
		status.ListOK = &ok
		status.ListStatus = &code
		status.ListName = list.Name
	}

	status.OK = status.MeOK && (status.ListOK == nil || *status.ListOK)
	return status, nil
}

func (c *Client) hasCredentials() bool {
	return c.key != "" && c.token != ""
}

// probe issues a GET and decodes the body only on success.
func (c *Client) probe(ctx context.Context, endpoint string, out any) (int, error) {
	err := c.do(ctx, "auth_check", http.MethodGet, endpoint, nil, nil, "", out)
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status, nil
	}
	if err != nil {
		return 0, err
	}
	return http.StatusOK, nil
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, query url.Values, body io.Reader, contentType string, out any) (err error) {
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.TrelloRequests.WithLabelValues(operation, outcome).Inc()
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "task board: rate limit")
		}
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return eris.Wrapf(err, "invalid task board url %q", endpoint)
	}
	params := u.Query()
	for k, vs := range query {
		params[k] = vs
	}
	params.Set("key", c.key)
	params.Set("token", c.token)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return eris.Wrap(c.sanitize(err), "failed to build task board request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(c.sanitize(err), "failed to reach task board")
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Task board rejected request",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode))
		return &UpstreamError{Status: resp.StatusCode, Body: c.redact(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "failed to decode task board response")
	}
	return nil
}

// sanitizedError keeps the cause for errors.Is while hiding credentials from its text.
type sanitizedError struct {
	msg string
	err error
}

func (e *sanitizedError) Error() string { return e.msg }
func (e *sanitizedError) Unwrap() error { return e.err }

func (c *Client) sanitize(err error) error {
	return &sanitizedError{msg: c.redact(err.Error()), err: err}
}

// redact removes the key and token from text that may echo a request URL.
func (c *Client) redact(text string) string {
	for _, secret := range []string{c.key, c.token, url.QueryEscape(c.key), url.QueryEscape(c.token)} {
		if secret != "" {
			text = strings.ReplaceAll(text, secret, redactedText)
		}
	}
	return text
}

func success(code int) bool {
	return code >= 200 && code < 300
}
