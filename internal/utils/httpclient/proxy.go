package httpclient

import (
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sammcj/mcp-pdftools/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// ProxyEnvironmentVariables defines the order of preference for proxy environment variables
var ProxyEnvironmentVariables = []string{
	"HTTPS_PROXY",
	"https_proxy",
	"HTTP_PROXY",
	"http_proxy",
}

// New creates the HTTP client used for remote file fetches. A proxy is configured only when one
// of ProxyEnvironmentVariables is set, and the transport is traced when tracing is enabled.
func New(timeout time.Duration, logger *logrus.Logger) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL := proxyFromEnv(os.Getenv); proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		switch {
		case err != nil:
			if logger != nil {
				logger.WithError(err).WithField("proxy_url", redactProxyCredentials(proxyURL)).Warn("Failed to parse proxy URL, using direct connection")
			}
		default:
			transport.Proxy = http.ProxyURL(parsed)
			if logger != nil {
				logger.WithField("proxy_url", redactProxyCredentials(proxyURL)).Debug("HTTP client configured with proxy")
			}
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: telemetry.WrapHTTPTransport(transport),
	}
}

func proxyFromEnv(getenv func(string) string) string {
	for _, envVar := range ProxyEnvironmentVariables {
		if proxyURL := getenv(envVar); proxyURL != "" && proxyURL != "$HTTPS_PROXY" && proxyURL != "$HTTP_PROXY" {
			return proxyURL
		}
	}
	return ""
}

// redactProxyCredentials removes credentials from proxy URL for safe logging
func redactProxyCredentials(proxyURL string) string {
	if parsed, err := url.Parse(proxyURL); err == nil {
		if parsed.User != nil {
			parsed.User = url.UserPassword("***", "***")
		}
		return parsed.String()
	}
	return "[invalid-url]"
}
