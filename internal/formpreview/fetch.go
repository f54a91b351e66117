package formpreview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	obslogger "github.com/smallbiznis/rentaldocs/internal/observability/logger"
)

const (
	defaultErrorMessage = "Erreur lors de la prévisualisation."
	maxPreviewBytes     = 8 << 20
)

// Request is one preview round trip.
type Request struct {
	Kind       documentdomain.Kind
	Payload    json.RawMessage
	Generation string
}

// Result is the rendered markup and the overflow flags reported with it.
type Result struct {
	HTML           string
	OverflowBefore bool
	OverflowAfter  bool
	CompactApplied bool
	Generation     string
}

// Fetcher performs the preview request. Implementations must honour ctx
// cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Result, error)
}

// StatusError is a non-2xx preview response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Erreur preview (%d)", e.Status)
}

// ErrorMessage is the text shown under the stale preview for err.
func ErrorMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return defaultErrorMessage
}

// HTTPFetcher posts to /api/{contracts|invoices}/preview-html.
type HTTPFetcher struct {
	BaseURL  string
	Client   *http.Client
	Username string
	Password string
}

func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (Result, error) {
	url := fmt.Sprintf("%s/api/%s/preview-html", f.BaseURL, req.Kind.Path())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(req.Payload))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/html")
	if req.Generation != "" {
		httpReq.Header.Set(obslogger.PreviewGenerationHeader, req.Generation)
	}
	if f.Password != "" {
		httpReq.SetBasicAuth(f.Username, f.Password)
	}

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &StatusError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	prefix := req.Kind.HeaderPrefix()
	return Result{
		HTML:           string(body),
		OverflowBefore: resp.Header.Get(prefix+"-Overflow") == "1",
		OverflowAfter:  resp.Header.Get(prefix+"-Overflow-After") == "1",
		CompactApplied: resp.Header.Get(prefix+"-Compact") == "1",
		Generation:     resp.Header.Get(obslogger.PreviewGenerationHeader),
	}, nil
}

// errorMessage digs the message out of the API error envelope.
func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		return strings.TrimSpace(plain)
	}
	var detailed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		return strings.TrimSpace(detailed.Message)
	}
	return ""
}
