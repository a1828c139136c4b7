package errs

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/url"
	"strings"
)

// ClassifyNetwork examines a raw error returned from an HTTP round trip and
// wraps it as a KindNetwork *Error, annotating the message with the most
// specific cause it can identify (timeout, DNS failure, connection
// refused, TLS failure). Mirrors the teacher's registry.classifyError.
func ClassifyNetwork(err error, message string) *Error {
	return &Error{Kind: KindNetwork, Message: message + ": " + networkCause(err), Err: err}
}

func networkCause(err error) string {
	if err == nil {
		return "unknown"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return "tls"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		var innerDNS *net.DNSError
		if errors.As(opErr.Err, &innerDNS) {
			return "dns"
		}
		return "connection"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		msg := strings.ToLower(urlErr.Err.Error())
		if strings.Contains(msg, "certificate") || strings.Contains(msg, "tls") || strings.Contains(msg, "x509") {
			return "tls"
		}
		return networkCause(urlErr.Err)
	}

	return err.Error()
}
