// Package log builds the application's slog loggers.
//
// Every logger wraps its handler in a RedactHandler, so traces can be
// shared without leaking request credentials or the scraped members'
// email addresses:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("member extracted", "email", "jean.martin@example.fr")
//	// ... email=***@example.fr
//
// Without verbose only warnings and errors are written; per-member
// failures are logged at Debug and Info and stay hidden.
package log
