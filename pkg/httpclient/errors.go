package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// downstreamError mirrors the error envelope written by pkg/httputil.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an error carrying the matching AppError semantics.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}

	code, message := "", string(body)
	var parsed downstreamError
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		code, message = parsed.Error.Code, parsed.Error.Message
	}
	return mapDownstreamError(resp.StatusCode, code, message, service)
}

func mapDownstreamError(status int, code, message, service string) error {
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: qualified, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualified)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%s server error (%d/%s): %s", service, status, code, message)
	default:
		if code == "" {
			code = http.StatusText(status)
		}
		return &apperrors.AppError{Code: code, Message: qualified, Status: status}
	}
}

// GetJSON performs a GET through doer and decodes a 2xx body into out.
// Other statuses become errors via ParseResponseError.
func GetJSON(ctx context.Context, doer HTTPDoer, url, service string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doer.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s: %w", service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ParseResponseError(resp, service)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}
