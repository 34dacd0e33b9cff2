// Package fetch downloads remote files the bootstrap needs: the Nix
// installer script and the flake.nix environment definition.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/nixup/pkg/fileutil"
)

// MaxDownloadSize caps remote file size (4MB). The installer script and
// flake definitions are all well under this.
const MaxDownloadSize = 4 * 1024 * 1024

// ErrTooLarge indicates the remote file exceeded MaxDownloadSize.
var ErrTooLarge = errors.Newf("remote file exceeds maximum size of %d bytes", MaxDownloadSize)

// Client fetches remote files over HTTP.
type Client struct {
	hc *http.Client
}

// New creates a Client using http.DefaultClient.
func New() *Client {
	return &Client{hc: http.DefaultClient}
}

// NewWithHTTPClient creates a Client with a custom http.Client, mainly for tests.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{hc: hc}
}

// Get fetches url and returns the body, enforcing MaxDownloadSize.
// Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", url)
	}
	if len(data) > MaxDownloadSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Download fetches url and writes it to path atomically with perm.
// The parent directory must already exist.
func (c *Client) Download(ctx context.Context, url, path string, perm os.FileMode) error {
	data, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(path, data, perm)
}
