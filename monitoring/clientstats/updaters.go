package clientstats

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Updater forwards a scraped stats document.
type Updater interface {
	Update(io.Reader) error
}

type genericWriter struct {
	io.Writer
}

func (gw *genericWriter) Update(r io.Reader) error {
	_, err := io.Copy(gw, r)
	return err
}

// NewGenericClientStatsUpdater can Update any io.Writer.
// It is used by the cli to write to stdout when an http endpoint
// is not provided. The output could be piped into another program
// or used for debugging.
func NewGenericClientStatsUpdater(w io.Writer) Updater {
	return &genericWriter{w}
}

type httpPoster struct {
	url    string
	client *http.Client
}

func (gw *httpPoster) Update(r io.Reader) error {
	resp, err := gw.client.Post(gw.url, "application/json", r)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.WithError(err).Debug("Could not close response body")
		}
	}()
	if resp.StatusCode != http.StatusOK {
		buf, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "could not read response body")
		}
		return fmt.Errorf("non-200 response status code (%d). response body=%s", resp.StatusCode, buf)
	}

	return nil
}

// NewClientStatsHTTPPostUpdater is used when the update endpoint
// is reachable via an HTTP POST request.
func NewClientStatsHTTPPostUpdater(u string) Updater {
	return &httpPoster{url: u, client: http.DefaultClient}
}
