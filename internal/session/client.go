package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
)

// Client is the exam API as seen by a session.
type Client interface {
	LoadExam(ctx context.Context, code, email string) (*model.PublicExam, error)
	Submit(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResult, error)
}

// HTTPClient talks to the public exam endpoints.
type HTTPClient struct {
	baseURL string
	lang    string
	http    *http.Client
}

// NewHTTPClient creates a client for the API at baseURL. lang is sent as
// Accept-Language so error messages come back localized.
func NewHTTPClient(baseURL, lang string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

// LoadExam fetches the public projection of an exam.
func (c *HTTPClient) LoadExam(ctx context.Context, code, email string) (*model.PublicExam, error) {
	u := c.baseURL + "/api/v1/public/exams/" + url.PathEscape(strings.TrimSpace(code))
	if email != "" {
		u += "?" + url.Values{"email": {email}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var exam model.PublicExam
	if err := c.do(req, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Submit sends a finished attempt.
func (c *HTTPClient) Submit(ctx context.Context, sub *model.SubmitRequest) (*model.SubmitResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/public/exams/submit", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res model.SubmitResult
	if err := c.do(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("unexpected response (status %d)", resp.StatusCode)}
	}
	if env.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
