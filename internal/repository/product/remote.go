package product

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/importer"
)

// maxPayload bounds the catalog response body.
const maxPayload = 10 << 20

// Doer is the subset of *http.Client used by the remote source.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type remoteRepo struct {
	url         string
	client      Doer
	placeholder string
	breaker     *gobreaker.CircuitBreaker[Listing]
	logger      logrus.FieldLogger
}

// BreakerSettings controls when the remote source stops calling a failing upstream.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 3, OpenTimeout: 30 * time.Second}
}

// NewRemote fetches the catalog with a single GET per List call. There are
// no retries; after repeated failures the breaker opens and List fails fast
// until OpenTimeout has passed.
func NewRemote(url string, client Doer, placeholder string, bs BreakerSettings, logger logrus.FieldLogger) Repository {
	r := &remoteRepo{
		url:         url,
		client:      client,
		placeholder: placeholder,
		logger:      logger.WithField("source", "remote"),
	}
	r.breaker = gobreaker.NewCircuitBreaker[Listing](gobreaker.Settings{
		Name:    "catalog-remote",
		Timeout: bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("catalog breaker state changed")
		},
	})
	return r
}

func (r *remoteRepo) Name() string {
	return "remote"
}

func (r *remoteRepo) List(ctx context.Context) (Listing, error) {
	listing, err := r.breaker.Execute(func() (Listing, error) {
		return r.fetch(ctx)
	})
	if err != nil {
		return Listing{}, &domain.CatalogFetchError{Source: r.Name(), Err: err}
	}
	return listing, nil
}

func (r *remoteRepo) fetch(ctx context.Context) (Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return Listing{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Listing{}, fmt.Errorf("get %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Listing{}, fmt.Errorf("get %s: unexpected status %s", r.url, resp.Status)
	}

	entries, synthesized, err := importer.DecodeJSON(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return Listing{}, err
	}
	if synthesized {
		r.logger.WithField("count", len(entries)).Warn("catalog has no id field, generated sequential ids")
	}

	products, warnings := importer.Normalize(entries, r.placeholder)
	return Listing{Products: products, Warnings: warnings}, nil
}
