package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stwalsh4118/procur/internal/models"
)

// RemoteConfig configures a RemoteSource.
type RemoteConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RemoteSource reads collections from the Procur REST API. A collection is
// served at GET {base}/{collection} as either a bare JSON array or an
// envelope of the form {"data": [...]}.
type RemoteSource struct {
	httpClient *resty.Client
}

// apiError is the error body returned by the Procur API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewRemoteSource builds a resty-backed source.
func NewRemoteSource(cfg RemoteConfig) *RemoteSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &RemoteSource{httpClient: client}
}

// Fetch requests one collection from the API.
func (s *RemoteSource) Fetch(ctx context.Context, collection Collection) ([]models.RawRecord, error) {
	apiErr := new(apiError)

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetError(apiErr).
		Get("/" + string(collection))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return nil, fmt.Errorf("procur api error: collection=%s, code=%d, message=%s", collection, resp.StatusCode(), message)
	}

	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	if envelope, ok := payload.(map[string]any); ok {
		data, found := envelope["data"]
		if !found {
			return nil, fmt.Errorf("%s: %w", collection, ErrMalformedCollection)
		}
		payload = data
	}

	recs, err := records(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", collection, err)
	}
	return recs, nil
}

// Ping checks that the API answers its health endpoint.
func (s *RemoteSource) Ping(ctx context.Context) error {
	resp, err := s.httpClient.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("ping procur api: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("procur api unhealthy: code=%d", resp.StatusCode())
	}
	return nil
}
