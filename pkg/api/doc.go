// Package api is the HTTP client for the Userstack session service:
// identify, refresh, setgroup, upgrade, summary and verify, each a
// single request/response exchange against a configured base URL with
// the application identifier attached as a header.
//
// Failures come back as *RequestError carrying the operation, HTTP
// status and response body, unwrapping to a per-operation sentinel:
//
//	rec, err := client.Identify(ctx, credential, session.IdentifyConfig{})
//	if errors.Is(err, api.ErrIdentifyFailed) {
//	    var reqErr *api.RequestError
//	    if errors.As(err, &reqErr) {
//	        display(reqErr.Body)
//	    }
//	}
package api
