package embedding

import (
	"net"
	"net/http"
	"time"
)

// NewPooledTransport returns an http.Transport tuned for a small number of
// embedding API hosts under concurrent load. Grounded on
// hieuntg81-alfred-ai's internal/adapter/llm/circuitbreaker.go
// NewPooledTransport, simplified to fixed defaults since the embedding
// provider has a single upstream host.
func NewPooledTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       120 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
