package whttp

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Params  url.Values
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode int
	BodyString string
	Headers    http.Header
}

// NewClient builds an HTTP client with a single retry after a fixed wait.
// A failed request is attempted exactly twice; the second failure is
// returned to the caller.
func NewClient(timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = log.New(io.Discard, "", 0)
	c.RetryMax = 1
	c.RetryWaitMin = 2 * time.Second
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = timeout
	return c
}

func SendHTTPRequest(wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	reqURL := wReq.URL
	if len(wReq.Params) > 0 {
		reqURL += "?" + wReq.Params.Encode()
	}

	req, err := retryablehttp.NewRequest(wReq.Method, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Connection", "close")

	for _, h := range wReq.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &WHTTPRes{
		StatusCode: resp.StatusCode,
		BodyString: string(bodyBytes),
		Headers:    resp.Header,
	}, nil
}
