package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRequestTimeout    = 30 * time.Second
	maxResponseBodyBytes     = 1 << 20 // 1 MiB
	contentTypeFormEncoded   = "application/x-www-form-urlencoded"
	contentTypeJSONWildcards = "json"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type FormClientConfig struct {
	// RequestTimeout bounds each POST; zero means the default 30s.
	RequestTimeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient HTTPDoer
	// SaveStateHook receives the ShouldSaveState notification. Optional.
	SaveStateHook func()
}

// FormClient is the reference server collaborator: it performs the
// form-encoded token POST on behalf of a strategy and relays the
// save-state notification to the host.
type FormClient struct {
	cfg        FormClientConfig
	httpClient HTTPDoer
}

func NewFormClient(cfg FormClientConfig) *FormClient {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &FormClient{cfg: cfg, httpClient: httpClient}
}

// PostAsForm performs an HTTP POST with a form-encoded body at uri and
// returns the parsed response fields as strings. Non-2xx statuses and
// provider error payloads surface as errors; interpreting them is the
// caller's business.
func (c *FormClient) PostAsForm(ctx context.Context, uri string, params map[string]string) (map[string]string, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("transport: form client is not configured")
	}
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("transport: post uri is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	form := url.Values{}
	for key, value := range params {
		if strings.TrimSpace(key) == "" {
			continue
		}
		form.Set(key, value)
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, uri, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeFormEncoded)
	req.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newRequestFailedError(err)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if readErr != nil {
		return nil, newReadResponseError(readErr)
	}
	if int64(len(body)) > maxResponseBodyBytes {
		return nil, newOversizedResponseError(maxResponseBodyBytes)
	}

	fields, parseErr := parseResponseFields(body, response.Header.Get("Content-Type"))
	if parseErr != nil {
		return nil, newDecodeResponseError(parseErr)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, newEndpointStatusError(response.StatusCode, describeEndpointError(fields))
	}

	return fields, nil
}

// ShouldSaveState relays the persistence notification to the configured
// hook. Strategies fire this exactly once per freshly minted nonce.
func (c *FormClient) ShouldSaveState() {
	if c == nil || c.cfg.SaveStateHook == nil {
		return
	}
	c.cfg.SaveStateHook()
}

func describeEndpointError(fields map[string]string) string {
	if description := strings.TrimSpace(fields["error_description"]); description != "" {
		return description
	}
	if code := strings.TrimSpace(fields["error"]); code != "" {
		return code
	}
	return "unknown error"
}

func parseResponseFields(body []byte, contentType string) (map[string]string, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if strings.Contains(contentType, contentTypeJSONWildcards) {
		return parseJSONFields(body)
	}
	if strings.Contains(contentType, "x-www-form-urlencoded") || strings.Contains(contentType, "text/plain") {
		return parseFormFields(body)
	}
	if fields, err := parseJSONFields(body); err == nil {
		return fields, nil
	}
	return parseFormFields(body)
}

func parseJSONFields(body []byte) (map[string]string, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(decoded))
	for key, value := range decoded {
		fields[key] = stringifyField(value)
	}
	return fields, nil
}

func parseFormFields(body []byte) (map[string]string, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fields, nil
}

func stringifyField(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
