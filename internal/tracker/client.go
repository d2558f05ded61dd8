// Package tracker implements the tracking service's session, sync-cursor,
// and transaction-post protocol.
package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"babytrack/internal/credential"
	"babytrack/internal/model"
)

const (
	deviceOSInfo = "Alexa"
	deviceName   = "Baby Tracker Alexa App"

	defaultTimeout = 15 * time.Second
	maxBodyPreview = 512
)

var (
	// ErrAccountReset means the service has invalidated the stored device
	// identifier; a new one must be provisioned out of band.
	ErrAccountReset = errors.New("tracker: account reset by service")

	// ErrAuthenticationFailed means the service rejected the session.
	ErrAuthenticationFailed = errors.New("tracker: authentication failed")
)

// TransportError is any HTTP-level failure (connection error, timeout,
// non-2xx with no recognized body signal) with the underlying cause.
type TransportError struct {
	Op  string // protocol step: "login", "device list", "post transaction"
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("tracker: %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each HTTP call. Default: 15s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client executes the record protocol against the tracking service. It
// holds no session or cursor state between calls: each Record builds a
// fresh session and reads the cursor fresh, so two concurrent recordings
// for the same device can collide on a sync id (the service's concurrency
// contract is unknown; a collision surfaces as a failed post, never a
// silent retry).
type Client struct {
	baseURL string
	timeout time.Duration
}

// New creates a Client for the given service base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire types for the service's three endpoints. Field names are fixed by
// the service.

type loginDevice struct {
	DeviceOSInfo string `json:"DeviceOSInfo"`
	DeviceName   string `json:"DeviceName"`
	DeviceUUID   string `json:"DeviceUUID"`
}

type loginAppInfo struct {
	AppType     int `json:"AppType"`
	AccountType int `json:"AccountType"`
}

type loginRequest struct {
	Device       loginDevice  `json:"Device"`
	AppInfo      loginAppInfo `json:"AppInfo"`
	Password     string       `json:"Password"`
	EmailAddress string       `json:"EmailAddress"`
}

type deviceRecord struct {
	DeviceUUID string `json:"DeviceUUID"`
	LastSyncID int64  `json:"LastSyncID"`
}

type syncTransaction struct {
	Transaction string `json:"Transaction"`
	SyncID      int64  `json:"SyncID"`
	OPCode      int    `json:"OPCode"`
}

// Receipt describes a successfully posted transaction. Payload is the
// JSON document that went over the wire (pre-base64), so callers can
// journal exactly what was sent without a second encode.
type Receipt struct {
	SyncID  int64
	Payload []byte
}

// Record posts one event to the account's history: login, cursor read,
// transaction post, in that strict order. The session (cookie state) lives
// only for this call and is discarded on every path. The event is encoded
// exactly once. No retries are performed.
func (c *Client) Record(ctx context.Context, event model.Event, creds credential.Credentials) (Receipt, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return Receipt{}, &TransportError{Op: "login", Err: err}
	}
	session := &http.Client{Timeout: c.timeout, Jar: jar}
	defer session.CloseIdleConnections()

	if err := c.login(ctx, session, creds); err != nil {
		return Receipt{}, err
	}

	cursor, err := c.lastSyncID(ctx, session, creds.DeviceID)
	if err != nil {
		return Receipt{}, err
	}

	payload, err := model.EncodeWire(event)
	if err != nil {
		return Receipt{}, fmt.Errorf("tracker: encoding event: %w", err)
	}

	syncID := cursor + 1
	tx := syncTransaction{
		Transaction: base64.StdEncoding.EncodeToString(payload),
		SyncID:      syncID,
		OPCode:      0,
	}
	if _, err := c.postJSON(ctx, session, "post transaction", "/account/transaction", tx); err != nil {
		return Receipt{}, err
	}

	slog.Debug("transaction posted", "sync_id", syncID, "object_id", event.Head().ObjectID)
	return Receipt{SyncID: syncID, Payload: payload}, nil
}

// login establishes session state on the jar. A body carrying the
// service's reset marker means the stored device identifier is no longer
// valid.
func (c *Client) login(ctx context.Context, session *http.Client, creds credential.Credentials) error {
	body := loginRequest{
		Device: loginDevice{
			DeviceOSInfo: deviceOSInfo,
			DeviceName:   deviceName,
			DeviceUUID:   creds.DeviceID,
		},
		AppInfo:      loginAppInfo{AppType: 0, AccountType: 0},
		Password:     creds.Password,
		EmailAddress: creds.EmailAddress,
	}
	respBody, err := c.postJSON(ctx, session, "login", "/session", body)
	if err != nil {
		return err
	}
	if containsFold(respBody, "reset") {
		return ErrAccountReset
	}
	return nil
}

// lastSyncID reads the device list and returns the cursor for our device.
// A device that has never synced is absent from the list; its cursor is 0.
func (c *Client) lastSyncID(ctx context.Context, session *http.Client, deviceID string) (int64, error) {
	const op = "device list"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/account/device", nil)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	resp, err := session.Do(req)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}

	if containsFold(string(raw), "unauthorized") {
		return 0, ErrAuthenticationFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &TransportError{Op: op, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, preview(raw))}
	}

	var devices []deviceRecord
	if err := json.Unmarshal(raw, &devices); err != nil {
		return 0, &TransportError{Op: op, Err: fmt.Errorf("decoding device list: %w", err)}
	}
	for _, d := range devices {
		if d.DeviceUUID == deviceID {
			return d.LastSyncID, nil
		}
	}
	return 0, nil
}

// postJSON sends one JSON POST through the session and returns the
// response body. Non-2xx responses surface as TransportError.
func (c *Client) postJSON(ctx context.Context, session *http.Client, op, path string, body any) (string, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := session.Do(req)
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{Op: op, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, preview(respBody))}
	}
	return string(respBody), nil
}

func containsFold(body, marker string) bool {
	return strings.Contains(strings.ToLower(body), marker)
}

func preview(body []byte) string {
	if len(body) > maxBodyPreview {
		body = body[:maxBodyPreview]
	}
	return string(body)
}
