// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package logs

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var level = new(slog.LevelVar)

// SetDebug lowers the log level to debug for the whole process.
func SetDebug() {
	level.Set(slog.LevelDebug)
}

// New builds the process logger: a text handler on w, plus a systemd
// journal handler when running as a unit. Under systemd stderr already
// lands in the journal unstructured, so the journal handler carries the
// structured attributes.
func New(w io.Writer) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}

	if os.Getenv("INVOCATION_ID") != "" {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{})
		if err == nil {
			handlers = append(handlers, journalHandler)
		}
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Default returns a logger writing to stderr.
func Default() *slog.Logger {
	return New(os.Stderr)
}
