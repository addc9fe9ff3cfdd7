package browser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Snapshotter is the part of a Session needed to watch a table re-render
type Snapshotter interface {
	Snapshot(ctx context.Context, selectors ...string) (string, error)
}

// SettleOptions controls Settle
type SettleOptions struct {
	// Baseline is the content hash observed before the change that triggered
	// the re-render. Empty on first load.
	Baseline string
	// MaxWait is the upper bound; once exceeded the latest snapshot is used.
	MaxWait time.Duration
	// Interval is the delay between two snapshots.
	Interval time.Duration
}

// DefaultPollInterval is used when SettleOptions.Interval is unset
const DefaultPollInterval = 250 * time.Millisecond

// SettleResult is the outcome of Settle
type SettleResult struct {
	HTML    string
	Hash    string
	Polls   int
	Settled bool
}

// ContentHash fingerprints a DOM snapshot
func ContentHash(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}

// Settle polls the element matched by selectors until its content differs
// from opts.Baseline and is identical across two successive checks.
//
// A "present" wait can succeed against the stale table while the page is
// still re-rendering; this waits for the content itself to stop moving.
// When MaxWait elapses first, the latest snapshot is returned with
// Settled=false. Snapshot errors before the deadline are treated as the
// table being mid-render.
func Settle(ctx context.Context, s Snapshotter, selectors []string, opts SettleOptions) (*SettleResult, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(opts.MaxWait)
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	res := &SettleResult{}
	var lastErr error
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res.Polls++

		html, err := s.Snapshot(ctx, selectors...)
		if err != nil {
			lastErr = err
		} else {
			lastErr = nil
			h := ContentHash(html)
			if h != opts.Baseline && h == res.Hash {
				res.Settled = true
				return res, nil
			}
			res.HTML, res.Hash = html, h
		}

		if !time.Now().Before(deadline) {
			break
		}
	}

	if res.HTML == "" && lastErr != nil {
		return nil, lastErr
	}
	log.Debug().
		Int("polls", res.Polls).
		Bool("unchanged", res.Hash == opts.Baseline).
		Dur("max_wait", opts.MaxWait).
		Msg("Table did not settle before the upper bound, using latest snapshot")
	return res, nil
}
