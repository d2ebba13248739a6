package sunweg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anicoll/sunweg-integration/internal/pkg/config"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// service is a SunWEG API client. It holds a single mutable token and is
// not safe for concurrent use.
type service struct {
	baseURL  string
	username string
	password string
	token    string
	client   *http.Client
	logger   *zap.Logger
}

func New(cfg *config.SunwegConfig) *service {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &service{
		baseURL:  baseURL,
		username: cfg.Username,
		password: cfg.Password,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
		logger:   zap.L(), // returns the global logger.
	}
}

func (s *service) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set(tokenHeader, s.token)
	}
}

func (s *service) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, dest, true)
}

func (s *service) post(ctx context.Context, path string, body, dest any, failOnUnsuccessful bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return s.do(req, dest, failOnUnsuccessful)
}

func (s *service) do(req *http.Request, dest any, failOnUnsuccessful bool) error {
	s.headers(req)
	s.logger.Debug("sending request", zap.String("method", req.Method), zap.String("path", req.URL.Path))

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer res.Body.Close()

	return s.treatResponse(res, dest, failOnUnsuccessful)
}

func (s *service) treatResponse(res *http.Response, dest any, failOnUnsuccessful bool) error {
	if res.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrAuthentication, res.Status)
	}
	if res.StatusCode != http.StatusOK {
		return &APIError{StatusCode: res.StatusCode, Message: res.Status}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.logger.Error("failed to decode sunweg response", zap.Error(err), zap.ByteString("body", body))
		return err
	}
	if failOnUnsuccessful && !env.Success {
		s.logger.Warn("sunweg api error", zap.String("message", env.Message))
		return &APIError{StatusCode: res.StatusCode, Message: env.Message}
	}

	if dest == nil {
		return nil
	}
	return json.Unmarshal(body, dest)
}
