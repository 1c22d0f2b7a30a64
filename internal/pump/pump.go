// Package pump submits scheduled downtimes to Thruk's cmd.cgi interface.
package pump

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/awiddersheim/thruk-downtimes/internal/config"
	"github.com/awiddersheim/thruk-downtimes/internal/types"
	"github.com/pkg/errors"
)

type Pump struct {
	cfg    *config.Pump
	client *http.Client
	log    *slog.Logger
	now    func() time.Time
}

func New(cfg *config.Pump, log *slog.Logger) *Pump {
	var transport http.RoundTripper
	if cfg.Insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Pump{
		cfg: cfg,
		client: &http.Client{
			Timeout:   time.Duration(cfg.Timeout) * time.Second,
			Transport: transport,
		},
		log: log.With("component", "pump"),
		now: time.Now,
	}
}

// Run reads the downtime file, expands today's schedules into command
// payloads and submits them one by one. The first submission that exhausts
// its retries aborts the run.
func (p *Pump) Run(ctx context.Context) (*types.Summary, error) {
	downtimes, err := p.load()
	if err != nil {
		return nil, err
	}

	summary := &types.Summary{
		TimeStarted: p.now().Format(time.RFC3339),
		Author:      p.cfg.Author,
		URL:         p.cfg.URL,
	}

	if len(downtimes) == 0 {
		p.log.Info("No downtimes to process")
		summary.TimeEnded = p.now().Format(time.RFC3339)
		return summary, nil
	}

	payloads := BuildPayloads(downtimes, p.now(), p.cfg.Author, p.log)
	summary.Prepared = len(payloads)

	for _, payload := range payloads {
		p.log.Info("Calling", "url", payload.RequestURL(p.cfg.URL))

		if p.cfg.Simulation {
			summary.Simulated++
			continue
		}

		if err := p.submit(ctx, payload); err != nil {
			summary.Failures = append(summary.Failures, types.FailureRecord{
				Target: payload.Target,
				Detail: err.Error(),
			})
			summary.TimeEnded = p.now().Format(time.RFC3339)
			return summary, err
		}
		summary.Submitted++
	}

	summary.TimeEnded = p.now().Format(time.RFC3339)
	return summary, nil
}

func (p *Pump) load() ([]types.Downtime, error) {
	data, err := os.ReadFile(p.cfg.InputFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", p.cfg.InputFile)
	}
	var downtimes []types.Downtime
	if err := json.Unmarshal(data, &downtimes); err != nil {
		return nil, errors.Wrapf(err, "decode %s", p.cfg.InputFile)
	}
	return downtimes, nil
}

// submit posts one payload, retrying with a sleep in between. Timeouts and
// non-200 responses retry; connection failures and malformed requests are
// permanent and abort on the first attempt.
func (p *Pump) submit(ctx context.Context, payload Payload) error {
	for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
		if attempt > 0 {
			p.log.Info("Retrying downtime submission", "attempt", attempt, "retries", p.cfg.Retries)
		}

		status, err := p.post(ctx, payload)
		switch {
		case err != nil && ctx.Err() != nil:
			return context.Cause(ctx)
		case err != nil && !retryable(err):
			p.log.Error("Permanent error processing downtime", "target", payload.Target, "error", err)
			return err
		case err != nil:
			p.log.Error("Could not process downtime", "target", payload.Target, "error", err)
		case status == http.StatusOK:
			p.log.Info("Finished processing downtime", "target", payload.Target, "status", status)
			return nil
		default:
			p.log.Error("Could not process downtime", "target", payload.Target, "status", status)
		}

		if attempt < p.cfg.Retries {
			p.log.Info("Sleeping before retrying", "seconds", p.cfg.Sleep)
			select {
			case <-time.After(time.Duration(p.cfg.Sleep) * time.Second):
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		}
	}
	return errors.Errorf("retry limit reached after %d retries for %s", p.cfg.Retries, payload.Target)
}

// retryable reports whether a failed request is worth another attempt. Only
// timeouts qualify; refused connections, unreachable hosts and bad URLs will
// not get better on a second try.
func retryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func (p *Pump) post(ctx context.Context, payload Payload) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, payload.RequestURL(p.cfg.URL), nil)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if p.cfg.User != "" {
		req.SetBasicAuth(p.cfg.User, p.cfg.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
