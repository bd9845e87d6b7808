package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/publicapi"
	"github.com/techwm-project/techwm/pkg/publicapi/apimodels"
)

const (
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 100 * time.Millisecond
	DefaultRetryWaitMax = 2 * time.Second
	DefaultTimeout      = 60 * time.Second
)

// APIClient is a utility for interacting with the API server.
type APIClient struct {
	BaseURI        *url.URL
	DefaultHeaders map[string]string
	Client         *retryablehttp.Client
}

type Option func(*APIClient)

// WithCaller sends the identity headers of caller with every request.
func WithCaller(caller models.Caller) Option {
	return func(c *APIClient) {
		c.DefaultHeaders[apimodels.HTTPHeaderUser] = caller.Username
		c.DefaultHeaders[apimodels.HTTPHeaderAccountType] = caller.AccountType.String()
	}
}

// WithRetryMax overrides how often a failed idempotent request is retried.
func WithRetryMax(retryMax int) Option {
	return func(c *APIClient) {
		c.Client.RetryMax = retryMax
	}
}

// NewAPIClient returns a new client for the API server at baseURI, for
// example http://localhost:1234.
func NewAPIClient(baseURI string, opts ...Option) (*APIClient, error) {
	base, err := url.Parse(baseURI)
	if err != nil {
		return nil, fmt.Errorf("invalid api address %q: %w", baseURI, err)
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = DefaultRetryMax
	httpClient.RetryWaitMin = DefaultRetryWaitMin
	httpClient.RetryWaitMax = DefaultRetryWaitMax
	httpClient.CheckRetry = retryPolicy
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	httpClient.Logger = zerologAdapter{}
	httpClient.HTTPClient.Timeout = DefaultTimeout
	httpClient.HTTPClient.Transport = otelhttp.NewTransport(httpClient.HTTPClient.Transport)

	c := &APIClient{
		BaseURI:        base.JoinPath(publicapi.APIPrefix),
		DefaultHeaders: map[string]string{},
		Client:         httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// retryPolicy retries connection failures and, for GET requests only, the
// server errors the default policy retries. A job submission that reached
// the server is never sent twice.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.Request != nil && resp.Request.Method != http.MethodGet {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (apiClient *APIClient) doGet(ctx context.Context, api string, query url.Values, resData any) error {
	addr := apiClient.BaseURI.JoinPath(api)
	addr.RawQuery = query.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return fmt.Errorf("publicapi: error creating Get request: %w", err)
	}
	return apiClient.do(req, resData)
}

func (apiClient *APIClient) doPost(ctx context.Context, api string, query url.Values, reqData, resData any) error {
	var body []byte
	if reqData != nil {
		var err error
		if body, err = json.Marshal(reqData); err != nil {
			return fmt.Errorf("publicapi: error encoding request body: %w", err)
		}
	}

	addr := apiClient.BaseURI.JoinPath(api)
	addr.RawQuery = query.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, addr.String(), body)
	if err != nil {
		return fmt.Errorf("publicapi: error creating Post request: %w", err)
	}
	req.Header.Set("Content-type", "application/json")
	return apiClient.do(req, resData)
}

func (apiClient *APIClient) do(req *retryablehttp.Request, resData any) error {
	for header, value := range apiClient.DefaultHeaders {
		req.Header.Set(header, value)
	}

	res, err := apiClient.Client.Do(req)
	if err != nil {
		return fmt.Errorf("publicapi: after sending request: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return apimodels.GenerateAPIErrorFromHTTPResponse(res).ToBaseError()
	}
	defer func() { _ = res.Body.Close() }()

	if err = json.NewDecoder(res.Body).Decode(resData); err != nil && err != io.EOF {
		return fmt.Errorf("publicapi: error decoding response body: %w", err)
	}
	return nil
}

// zerologAdapter routes the retry logs of retryablehttp to zerolog at
// debug level, except errors.
type zerologAdapter struct{}

func (zerologAdapter) Error(msg string, keysAndValues ...interface{}) {
	logWith(log.Error(), keysAndValues).Msg(msg)
}

func (zerologAdapter) Info(msg string, keysAndValues ...interface{}) {
	logWith(log.Debug(), keysAndValues).Msg(msg)
}

func (zerologAdapter) Debug(msg string, keysAndValues ...interface{}) {
	logWith(log.Trace(), keysAndValues).Msg(msg)
}

func (zerologAdapter) Warn(msg string, keysAndValues ...interface{}) {
	logWith(log.Debug(), keysAndValues).Msg(msg)
}

func logWith(event *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		event = event.Interface(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	return event
}

var _ retryablehttp.LeveledLogger = zerologAdapter{}
