package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"todopro/internal/logger"
	"todopro/internal/service"
)

// APITimeout is the timeout for a single API call.
const APITimeout = 10 * time.Second

// requester issues JSON requests against a base URL.
type requester struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

func newRequester(baseURL string, httpClient *http.Client, log *zap.Logger) (requester, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return requester{}, fmt.Errorf("invalid api url: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return requester{base: base, http: httpClient, log: log}, nil
}

// endpoint resolves path segments against the base URL.
func (r requester) endpoint(elem ...string) *url.URL {
	return r.base.JoinPath(elem...)
}

// send performs the request and returns the response body of a 2xx reply.
// Non-success statuses come back as *googleapi.Error.
func (r requester) send(ctx context.Context, method string, u *url.URL, body any, prepare func(*http.Request)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prepare != nil {
		prepare(req)
	}

	start := time.Now()
	res, err := r.http.Do(req)
	if err != nil {
		r.log.Debug("api request failed", zap.String("method", method), zap.String("path", u.Path), zap.Error(err))
		return nil, err
	}
	defer res.Body.Close()
	r.log.Debug("api request", logger.RequestFields(req, res.StatusCode, time.Since(start))...)

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, err
	}
	return io.ReadAll(res.Body)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w (run: todopro login)", service.ErrUnauthorized)
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		default:
			return fmt.Errorf("server returned %d", apiErr.Code)
		}
	}

	return err
}
