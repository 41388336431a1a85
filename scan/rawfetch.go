package scan

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	tls2 "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxRawBody caps how much raw page source is read.
const maxRawBody = 10 * 1024 * 1024 // 10 MB

// rawFetch is the raw page-source fetch step, behind an interface so the
// pipeline can be exercised without the network.
type rawFetch interface {
	fetch(ctx context.Context, targetURL string) ([]byte, error)
}

// rawFetcher retrieves page source over plain HTTP with a Chrome TLS
// fingerprint (utls). It runs before and independently of the browser, so
// a scan always has raw HTML even when the session cannot be opened.
type rawFetcher struct{}

// fetch retrieves the URL and returns the response body. Certificate
// verification is relaxed: scan targets include staging hosts with
// self-signed certificates.
func (f *rawFetcher) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rawfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rawfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRawBody))
	if err != nil {
		return nil, fmt.Errorf("rawfetch: read body: %w", err)
	}

	return body, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName:         host,
		InsecureSkipVerify: true,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
