package session

import "errors"

var (
	// ErrMalformedRecord indicates the persisted record could not be parsed
	ErrMalformedRecord = errors.New("session.malformed_record")

	// ErrNoAPI indicates no remote client is configured
	ErrNoAPI = errors.New("session.no_api")

	// ErrNoStore indicates no persistence store is configured
	ErrNoStore = errors.New("session.no_store")
)
