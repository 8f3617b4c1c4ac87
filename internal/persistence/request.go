package persistence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/felixbrock/lpviz/internal/app"
)

const maxResponseBytes = 1 << 20

type reqConfig struct {
	Method  string
	Url     string
	Headers []string
	Body    []byte
	// MaxBytes caps the response body; zero means maxResponseBytes.
	MaxBytes int64
}

type limitedBody struct {
	io.Reader
	io.Closer
}

// request performs one exchange and decodes a 2xx JSON body into T. Headers
// are given as "Key:Value" protos. Bodies larger than the configured cap are
// rejected.
func request[T any](ctx context.Context, client *http.Client, config reqConfig) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, config.Method, config.Url, bytes.NewBuffer(config.Body))

	if err != nil {
		return nil, err
	}

	for i := 0; i < len(config.Headers); i++ {
		headerKV := strings.SplitN(config.Headers[i], ":", 2)
		if len(headerKV) != 2 {
			return nil, fmt.Errorf("malformed header proto %q", config.Headers[i])
		}
		req.Header.Add(strings.TrimSpace(headerKV[0]), strings.TrimSpace(headerKV[1]))
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)

	if err != nil {
		return nil, err
	}

	limit := config.MaxBytes
	if limit <= 0 {
		limit = maxResponseBytes
	}
	body, err := app.Read(limitedBody{Reader: io.LimitReader(resp.Body, limit+1), Closer: resp.Body})

	if err != nil {
		return nil, err
	} else if int64(len(body)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	} else if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected response status code %d", resp.StatusCode)
	}

	var t *T
	t, err = app.ReadJSON[T](body)

	if err != nil {
		return nil, err
	}

	return t, nil
}
