// Package httputil provides request discipline shared by upstream API clients
// and the stages that call them.
//
// # Retry
//
// [Retry] re-runs a request when it fails with a [RetryableError] (network
// failures and 5xx responses). Rate-limit and other 4xx failures are never
// wrapped as retryable and are returned on the first attempt.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Get(ctx, url, &v)
//	})
//
// # Pacing
//
// [Pacer] enforces the fixed waits that keep a sequential crawl under the
// upstream's abuse-detection thresholds: a short wait after every per-item
// call and a longer one after every completed page. The waits are
// unconditional; they do not adapt to latency or rate-limit headers.
//
//	p := httputil.NewPacer(500*time.Millisecond, 2*time.Second)
//	for _, item := range page {
//	    process(item)
//	    if err := p.AfterItem(ctx); err != nil {
//	        return err
//	    }
//	}
//	p.AfterPage(ctx)
package httputil
