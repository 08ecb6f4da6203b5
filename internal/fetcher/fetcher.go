// Package fetcher retrieves static data files over HTTP(S), FTP, or the
// local filesystem, and parses delimited and spreadsheet tables. The
// dashboard loads each source once per initialization, so the retrieval
// policy is a single attempt with a small bounded number of transport
// retries and no long backoff.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"

	"github.com/rotisserie/eris"
)

// Fetcher retrieves a named resource and returns its body.
type Fetcher interface {
	// Open fetches the resource and returns a reader for its contents.
	// The ref may be an http(s):// or ftp:// URL or a filesystem path.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Client dispatches retrieval by scheme: HTTP(S) and FTP URLs go to the
// respective fetchers, anything else is treated as a local path.
type Client struct {
	http *HTTPFetcher
	ftp  *FTPFetcher
}

// NewClient creates a Client with the given HTTP options and default FTP
// options.
func NewClient(opts HTTPOptions) *Client {
	return &Client{
		http: NewHTTPFetcher(opts),
		ftp:  NewFTPFetcher(FTPOptions{}),
	}
}

// Open implements Fetcher.
func (c *Client) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return c.http.Download(ctx, ref)
		case "ftp":
			return c.ftp.Download(ctx, ref)
		}
	}
	f, err := os.Open(ref)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", ref)
	}
	return f, nil
}

// ReadAll fetches the resource and returns its full contents.
func ReadAll(ctx context.Context, f Fetcher, ref string) ([]byte, error) {
	rc, err := f.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", ref)
	}
	return data, nil
}
