package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	charsetpkg "golang.org/x/net/html/charset"
)

// Client represents an HTTP client with configuration options.
type Client struct {
	baseURL            string
	client             *http.Client
	defaultQueryParams map[string]string
	sensitiveParams    map[string]struct{}
	logger             HTTPLogger
}

// ClientOptions represents the configuration options for the HTTP client.
type ClientOptions struct {
	DefaultQueryParams  map[string]string
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	ConnectionTimeout   time.Duration
	ReadTimeout         time.Duration
	// SensitiveParams are query parameter names whose values are masked before logging.
	SensitiveParams []string
	Logger          HTTPLogger
}

// NewHttpClient creates a new HTTP client with the given base URL and configuration options.
// Redirects are not followed.
func NewHttpClient(baseURL string, opts ClientOptions) *Client {
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 200
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = 20
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = NopLogger{}
	}

	transport := &http.Transport{
		MaxIdleConns:        opts.MaxIdleConns,
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		IdleConnTimeout:     opts.IdleConnTimeout,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectionTimeout,
		}).DialContext,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.ReadTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	sensitive := make(map[string]struct{}, len(opts.SensitiveParams))
	for _, name := range opts.SensitiveParams {
		sensitive[name] = struct{}{}
	}

	return &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		client:             client,
		defaultQueryParams: opts.DefaultQueryParams,
		sensitiveParams:    sensitive,
		logger:             opts.Logger,
	}
}

// Request creates a new Request object for the client.
func (hc *Client) Request() *Request {
	return NewHttpClientRequest(hc)
}

// doRequest sends a GET request and decodes a 2xx body into successResp, any other body into errorResp.
// It returns the success response, error response, status code, and error if any.
func (hc *Client) doRequest(ctx context.Context, path string, queryParams map[string]string, successResp any, errorResp any) (any, any, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	query := hc.buildQuery(queryParams)
	requestURL := hc.buildURL(path)
	logURL := requestURL
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
		logURL += "?" + hc.redact(query).Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	hc.logger.LogRequest(http.MethodGet, logURL)
	start := time.Now()

	resp, err := hc.client.Do(req)
	if err != nil {
		hc.logger.LogResponseError(http.MethodGet, logURL, 0, "", time.Since(start).Milliseconds(), err)
		return nil, nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		hc.logger.LogResponseError(http.MethodGet, logURL, resp.StatusCode, "", latency, err)
		return nil, nil, resp.StatusCode, err
	}

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		hc.logger.LogResponseSuccess(http.MethodGet, logURL, resp.StatusCode, latency)
		if successResp != nil {
			if err = unmarshalResponse(bodyBytes, contentType, successResp); err != nil {
				return nil, nil, resp.StatusCode, fmt.Errorf("failed to decode response body: %w", err)
			}
		}
		return successResp, nil, resp.StatusCode, nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode}
	hc.logger.LogResponseError(http.MethodGet, logURL, resp.StatusCode, string(bodyBytes), latency, statusErr)

	if errorResp != nil {
		if err = unmarshalResponse(bodyBytes, contentType, errorResp); err != nil {
			return nil, nil, resp.StatusCode, statusErr
		}
	}

	return nil, errorResp, resp.StatusCode, statusErr
}

// unmarshalResponse decodes a JSON body, transcoding it to UTF-8 first when the content type declares another charset
func unmarshalResponse(bodyBytes []byte, contentType string, target any) error {
	var reader io.Reader = bytes.NewReader(bodyBytes)

	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" && !strings.EqualFold(label, "utf-8") {
			reader, err = charsetpkg.NewReaderLabel(label, reader)
			if err != nil {
				return err
			}
		}
	}

	return json.NewDecoder(reader).Decode(target)
}

// buildURL builds a normalized URL by properly handling baseURL and path
func (hc *Client) buildURL(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return hc.baseURL + path
}

// buildQuery merges default and per-request query parameters, request values winning.
func (hc *Client) buildQuery(params map[string]string) url.Values {
	query := url.Values{}
	for key, value := range hc.defaultQueryParams {
		query.Set(key, value)
	}
	for key, value := range params {
		query.Set(key, value)
	}
	return query
}

// redact returns a copy of query with sensitive values masked.
func (hc *Client) redact(query url.Values) url.Values {
	if len(hc.sensitiveParams) == 0 {
		return query
	}
	masked := url.Values{}
	for key, values := range query {
		if _, ok := hc.sensitiveParams[key]; ok {
			masked.Set(key, "***")
			continue
		}
		masked[key] = values
	}
	return masked
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error: status %d", e.StatusCode)
}
