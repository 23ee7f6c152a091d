package api

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentifyFailed indicates the identify exchange was rejected
	ErrIdentifyFailed = errors.New("api.identify_failed")

	// ErrRefreshFailed indicates the refresh call failed (recoverable)
	ErrRefreshFailed = errors.New("api.refresh_failed")

	// ErrGroupChangeFailed indicates the setgroup call failed
	ErrGroupChangeFailed = errors.New("api.group_change_failed")

	// ErrUpgradeFailed indicates the upgrade call failed
	ErrUpgradeFailed = errors.New("api.upgrade_failed")

	// ErrSummaryFailed indicates the summary call failed
	ErrSummaryFailed = errors.New("api.summary_failed")

	// ErrVerifyFailed indicates the verify call failed
	ErrVerifyFailed = errors.New("api.verify_failed")

	// ErrMissingAPIKey indicates a privileged call was attempted without
	// a configured API key; no request is issued
	ErrMissingAPIKey = errors.New("api.missing_api_key")

	// ErrMissingBaseURL indicates the client was created without a base URL
	ErrMissingBaseURL = errors.New("api.missing_base_url")

	// ErrMissingAppID indicates the client was created without an
	// application identifier
	ErrMissingAppID = errors.New("api.missing_app_id")
)

// RequestError captures a failed request/response exchange: the
// operation, the HTTP status (0 for transport errors) and the server's
// response body so the embedder can display it. It unwraps to the
// per-operation sentinel above.
type RequestError struct {
	Op     string
	Status int
	Body   string

	sentinel error
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("userstack %s request failed: %s", e.Op, e.Body)
	}
	return fmt.Sprintf("userstack %s request failed with status %d: %s", e.Op, e.Status, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.sentinel
}
