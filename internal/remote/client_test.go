package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/models"
)

// roundTripperFunc adapts a function into an http.RoundTripper so the
// client can be exercised without a network.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn, Timeout: time.Second}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestFetchPatients_TransportError(t *testing.T) {
	c := NewClient(newTestClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	}), "http://registry.example", zap.NewNop())

	env, err := c.FetchPatients(context.Background())
	if env != nil {
		t.Fatalf("expected nil envelope, got %+v", env)
	}
	if err == nil || !strings.Contains(err.Error(), "fetch patients") {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}

func TestFetchPatients_ServerError(t *testing.T) {
	c := NewClient(newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, "boom\n"), nil
	}), "http://registry.example", zap.NewNop())

	_, err := c.FetchPatients(context.Background())
	if err == nil || !strings.Contains(err.Error(), "server error: boom") {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestFetchPatients_InvalidJSON(t *testing.T) {
	c := NewClient(newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	}), "http://registry.example", zap.NewNop())

	_, err := c.FetchPatients(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid response") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestFetchPatients_ErrorEnvelope(t *testing.T) {
	// A decoded error envelope is not a transport failure.
	c := NewClient(newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"type":"error","message":"session expired"}`), nil
	}), "http://registry.example", zap.NewNop())

	env, err := c.FetchPatients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.OK() {
		t.Error("expected error envelope")
	}
	if env.Message != "session expired" {
		t.Errorf("unexpected message %q", env.Message)
	}
}

func TestFetchPatients_Success(t *testing.T) {
	body := `{"type":"success","message":"ok","response":{"my":{"midasid":"1","fname":"A"},"list":[{"relativeid":"2"}]}}`
	c := NewClient(newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != apiList {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, body), nil
	}), "http://registry.example", zap.NewNop())

	env, err := c.FetchPatients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.OK() || env.Response.My == nil || env.Response.My.MidasID != "1" {
		t.Errorf("unexpected envelope %+v", env)
	}
	if len(env.Response.List) != 1 || env.Response.List[0].RelativeID != "2" {
		t.Errorf("unexpected list %+v", env.Response.List)
	}
}

func TestCreatePatient_SendsPayload(t *testing.T) {
	var got models.CreatePayload
	c := NewClient(newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != apiCreate {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"type":"success","message":"Patient added successfully"}`), nil
	}), "http://registry.example", zap.NewNop())

	env, err := c.CreatePatient(context.Background(), models.CreatePayload{
		FirstName: "Gita",
		Relation:  "2",
		Country:   "977",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.OK() {
		t.Errorf("expected success envelope, got %+v", env)
	}
	if got.FirstName != "Gita" || got.Relation != "2" || got.Country != "977" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(&models.Envelope{Message: "no record found"}, nil); got != "no record found" {
		t.Errorf("got %q", got)
	}
	if got := ErrorMessage(nil, errors.New("dial tcp: timeout")); got != "dial tcp: timeout" {
		t.Errorf("got %q", got)
	}
	if got := ErrorMessage(nil, nil); got != genericErrMsg {
		t.Errorf("got %q", got)
	}
	// Remote message wins over the transport error.
	if got := ErrorMessage(&models.Envelope{Message: "rejected"}, errors.New("x")); got != "rejected" {
		t.Errorf("got %q", got)
	}
}
