package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/adamwoolhether/adminapi/client/download"
)

// Download executes d and saves a successful body into dir. The file is
// named from the Content-Disposition header unless the options say
// otherwise, and the saved path is returned. Failures are normalized
// exactly as for [Client.Send].
func (c *Client) Download(ctx context.Context, d Descriptor, dir string, opts ...download.Option) (string, error) {
	if dir == "" {
		return "", errors.New("download directory must not be empty")
	}
	d.Response = ResponseBinary

	ctx, span := c.startSpan(ctx, "client.download", d)
	defer span.End()

	req, err := c.buildRequest(ctx, d, defaultAccept)
	if err != nil {
		endSpan(span, err)
		return "", err
	}

	var dest string
	err = c.exec(req, d, func(resp *http.Response) error {
		var err error
		dest, err = download.Target(dir, resp.Header.Get("Content-Disposition"), opts...)
		if err != nil {
			return err
		}

		if err := download.Save(ctx, resp.Body, resp.ContentLength, dest, c.logger, opts...); err != nil {
			return fmt.Errorf("saving %s: %w", dest, err)
		}
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return "", err
	}

	return dest, nil
}
