// Package fetch downloads the documents extraction runs against.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"eduparser/internal/components/assert"
	"eduparser/internal/components/telemetry"
	"eduparser/internal/scraper"
	otelutil "eduparser/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	report_fetch_decode       = "fetch.decode"
	report_fetch_content_type = "fetch.content-type"
	report_fetch_retry        = "fetch.retry"
)

const (
	DefaultRetries       = 3
	DefaultRetryWaitMs   = 500
	DefaultRatePerSecond = 2
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

type Config struct {
	// Retries is the number of extra attempts on network errors and 5xx
	// responses. a negative value disables retries.
	Retries          int     `json:"retries"`
	RetryWaitMs      int     `json:"retry_wait_ms"`
	UserAgent        string  `json:"user_agent"`
	BypassCloudflare bool    `json:"bypass_cloudflare"`
	RatePerSecond    float64 `json:"rate_per_second"`
}

func (c Config) withDefaults() Config {
	if c.Retries == 0 {
		c.Retries = DefaultRetries
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryWaitMs <= 0 {
		c.RetryWaitMs = DefaultRetryWaitMs
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = DefaultRatePerSecond
	}
	return c
}

// Client fetches documents over HTTP. it is safe for concurrent use.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func New(cfg Config, tel telemetry.API) *Client {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("fetch", tel)
	cfg = cfg.withDefaults()

	httpClient := resty.New()
	if cfg.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", cfg.UserAgent)
	httpClient.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/vnd.ms-excel,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,*/*;q=0.8")
	httpClient.SetHeader("accept-language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")

	wait := time.Duration(cfg.RetryWaitMs) * time.Millisecond
	httpClient.SetRetryCount(cfg.Retries)
	httpClient.SetRetryWaitTime(wait)
	httpClient.SetRetryMaxWaitTime(wait * 8)
	httpClient.AddRetryCondition(shouldRetry)
	httpClient.AddRetryHook(func(res *resty.Response, err error) {
		if res == nil || res.Request == nil {
			tel.ReportDebug(report_fetch_retry, err)
			return
		}
		tel.ReportDebug(report_fetch_retry, res.Request.URL, res.StatusCode(), err)
	})

	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(2, int(cfg.RatePerSecond)))
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	otelutil.TraceResty(httpClient, "eduparser/fetch")

	return &Client{http: httpClient, tel: tel}
}

// shouldRetry retries transport errors and server errors. client errors and
// cancellation are final.
func shouldRetry(res *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return res != nil && res.StatusCode() >= http.StatusInternalServerError
}

// Fetch downloads url. timeout bounds the whole fetch, retries included.
// html bodies are returned as UTF-8 whatever charset the site declared.
func (c *Client) Fetch(ctx context.Context, url string, timeout time.Duration) (scraper.Document, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return scraper.Document{}, &scraper.FetchError{
			URL:     url,
			Timeout: errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:     err,
		}
	}
	if !res.IsSuccess() {
		return scraper.Document{}, &scraper.FetchError{
			URL:        url,
			StatusCode: res.StatusCode(),
		}
	}

	contentType := res.Header().Get("content-type")
	body := res.Body()
	doc := scraper.Document{
		URL:         url,
		ContentType: contentType,
		Format:      DetectFormat(body),
		Body:        body,
	}
	c.checkContentType(doc)

	if doc.Format == scraper.FormatHTML {
		decoded, err := decodeHTML(body, contentType)
		if err != nil {
			c.tel.ReportWarning(report_fetch_decode, url, err)
		} else {
			doc.Body = decoded
		}
	}
	return doc, nil
}

func decodeHTML(body []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("charset reader: %w", err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return decoded, nil
}
