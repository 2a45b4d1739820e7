package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// WrapHTTPTransport adds client spans to transport when tracing is enabled.
func WrapHTTPTransport(transport http.RoundTripper) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if !IsEnabled() {
		return transport
	}
	return otelhttp.NewTransport(transport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "fetch " + r.URL.Host
		}),
	)
}
