package probe

import "errors"

var (
	// ErrRequestFailed is the error of a probe that got a non-2xx response
	// or could not complete the request.
	ErrRequestFailed = errors.New("request failed")

	// ErrTimedOut is the error of a probe that exceeded its timeout.
	ErrTimedOut = errors.New("request timed out")

	// ErrUnknownStatus is returned when decoding a status name that does not exist.
	ErrUnknownStatus = errors.New("unknown probe status")

	// ErrInvalidProxyAddress is returned by NewClient for a proxy that is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyNotSOCKS5 is returned when the proxy answers but does not speak SOCKS5.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when the proxy address refuses connections.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when the proxy does not answer in time.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)
