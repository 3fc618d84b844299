// Package fetch implements the retrying HTTP GET used for every page
// deputes downloads.
//
// A fetch is a sequence of attempts. Each attempt has its own timeout, a
// failed attempt is followed by a fixed delay when more attempts remain,
// and the first successful attempt ends the sequence. The result is an
// Outcome, which is either a Success or a Failure; callers must branch on
// it explicitly:
//
//	switch out := f.Fetch(ctx, url, params).(type) {
//	case fetch.Success:
//	    parse(out.Body)
//	case fetch.Failure:
//	    logger.Debug("fetch failed", "error", out.Err)
//	}
//
// Fetcher values are safe for concurrent use.
package fetch
