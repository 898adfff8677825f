// Package remote implements the HTTP client for the patient registry
// service. The transport itself (base URL, TLS, timeouts) is configured by
// the caller; this package only speaks the envelope protocol and sorts
// failures into the two classes the rest of the layer cares about:
// remote-rejected (the service answered with an error envelope) and
// transport failure (the call itself failed).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/models"
)

const (
	apiList   = "/api/patient/list"
	apiCreate = "/api/patient/create"
)

// genericErrMsg is the fallback when neither the envelope nor the
// transport supplies a message.
const genericErrMsg = "something went wrong, please try again"

// Client talks to the registry service.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

// NewClient constructs a Client. The http.Client carries all transport
// concerns; baseURL must not end with a slash.
func NewClient(httpClient *http.Client, baseURL string, log *zap.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// FetchPatients requests the full patient list. A decoded envelope is
// returned even when it carries an error status; a non-nil error means the
// transport failed before an envelope could be read.
func (c *Client) FetchPatients(ctx context.Context) (*models.Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiList, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch patients: %w", err)
	}
	return c.do(req, "fetch patients")
}

// CreatePatient submits a create payload and returns the service's
// envelope, with the same error contract as FetchPatients.
func (c *Client) CreatePatient(ctx context.Context, payload models.CreatePayload) (*models.Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiCreate, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "create patient")
}

func (c *Client) do(req *http.Request, op string) (*models.Envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("registry request failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: server error: %s", op, strings.TrimSpace(string(msg)))
	}

	var env models.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: invalid response: %w", op, err)
	}

	c.log.Debug("registry response",
		zap.String("op", op),
		zap.String("type", env.Type),
	)
	return &env, nil
}

// ErrorMessage picks the most specific message available for a failed
// operation: the remote-supplied message, else the transport error, else a
// generic fallback.
func ErrorMessage(env *models.Envelope, err error) string {
	if env != nil && env.Message != "" {
		return env.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return genericErrMsg
}
