// Package resilience retries connection setup with exponential backoff.
//
// Store operations never retry internally; a failed read or write surfaces to
// the caller once. Retry is for establishing the cluster session, where a
// node that is still starting is expected:
//
//	client, err := resilience.Retry(ctx, policy, func(ctx context.Context) (*cassandra.Client, error) {
//	    return cassandra.New(cfg, log)
//	})
package resilience
