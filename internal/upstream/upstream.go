// Package upstream holds the HTTP plumbing shared by the clients of the
// managed text, chat and speech services.
package upstream

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// NewHTTPClient returns a client tuned for short calls to managed services.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// StatusError is a non-2xx reply from an upstream service.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Service, e.Status, e.Body)
}

const maxErrorBody = 512

// CheckStatus turns a non-2xx response into a *StatusError. The body is
// consumed only in the error case.
func CheckStatus(service string, res *http.Response) error {
	if res.StatusCode/100 == 2 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	return &StatusError{Service: service, Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
}
