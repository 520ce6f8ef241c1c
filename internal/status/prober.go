package status

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Outcome classifies a probe result.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeHTTPError    Outcome = "http_error"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeNetworkError Outcome = "network_error"
)

// ProbeResult records a single external probe.
type ProbeResult struct {
	URL            string    `json:"url"`
	Outcome        Outcome   `json:"outcome"`
	StatusCode     int       `json:"status_code,omitempty"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	CheckedAt      time.Time `json:"checked_at"`
	Success        bool      `json:"success"`
}

// Prober performs bounded-timeout checks against an external endpoint. A
// timeout is classified distinctly from other network failures.
type Prober struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// NewProber constructs a prober for the given URL and timeout.
func NewProber(url string, timeout time.Duration) *Prober {
	return &Prober{
		client:  &http.Client{},
		url:     url,
		timeout: timeout,
	}
}

// Check runs one probe and returns its classified result.
func (p *Prober) Check(ctx context.Context) ProbeResult {
	result := ProbeResult{URL: p.url, CheckedAt: time.Now()}
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.url, nil)
	if err != nil {
		result.Outcome = OutcomeNetworkError
		result.ResponseTimeMs = time.Since(start).Milliseconds()
		return result
	}

	resp, err := p.client.Do(req)
	result.ResponseTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		if isTimeoutErr(err) {
			result.Outcome = OutcomeTimeout
		} else {
			result.Outcome = OutcomeNetworkError
		}
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= 400 {
		result.Outcome = OutcomeHTTPError
	} else {
		result.Outcome = OutcomeOK
		result.Success = true
	}
	return result
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
