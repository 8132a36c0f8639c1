package app

import "log/slog"

type closer struct {
	name string
	fn   func() error
}

// closers releases resources opened during startup, newest first.
type closers []closer

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, closer{name: name, fn: fn})
}

func (c closers) closeAll(logger *slog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].fn(); err != nil {
			logger.Error("cleanup after failed start",
				slog.String("resource", c[i].name),
				slog.String("error", err.Error()),
			)
		}
	}
}
