package crawler

import "log/slog"

// settings holds options shared by Lister and DetailExtractor.
type settings struct {
	logger *slog.Logger
}

// Option configures a Lister or a DetailExtractor.
type Option func(*settings)

// WithLogger sets the logger used for extraction traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func newSettings(opts []Option) settings {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}
