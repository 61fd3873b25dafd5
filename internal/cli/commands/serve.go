// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	dslqueue "github.com/dslqueue/dslqueue"
	"github.com/dslqueue/dslqueue/internal/config"
	"github.com/dslqueue/dslqueue/internal/loader"
	"github.com/dslqueue/dslqueue/internal/logs"
	"github.com/dslqueue/dslqueue/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		host        string
		port        int
		endpoint    string
		mode        string
		exitCommand string
		autoExit    bool
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "serve [dsl files...]",
		Short: "Start the DSL queue server",
		Long: `Start the DSL queue server.

Without file arguments the server runs interactively: open the printed URL
in a browser, paste DSL payloads into the form, and let the test runner
poll the configured endpoint. With file arguments the queue is pre-seeded
with each file's content in order.

File-seeded runs default to cycling mode (payloads are served round-robin
forever); interactive runs default to oneshot. Pass --exit to send the
configured exit command once a oneshot queue is exhausted, so the test
runner terminates its session automatically.

Examples:
  dslqueue serve
  dslqueue serve --mode oneshot --exit test_dsl/sample_test.yaml
  dslqueue serve --watch test_dsl/*.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logs.SetDebug()
			}
			logger := logs.Default()

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoints.Poll = endpoint
			}
			if cmd.Flags().Changed("mode") {
				cfg.Queue.Mode = mode
			}
			if cmd.Flags().Changed("exit-command") {
				cfg.Queue.ExitCommand = exitCommand
			}
			if cmd.Flags().Changed("exit") {
				cfg.Queue.AutoExit = autoExit
			}
			if cmd.Flags().Changed("watch") {
				cfg.Seed.Watch = watch
			}

			paths := args
			if len(paths) == 0 {
				paths = cfg.Seed.Paths
			}
			if cfg.Queue.Mode == "" {
				if len(paths) > 0 {
					cfg.Queue.Mode = dslqueue.ModeCycling.String()
				} else {
					cfg.Queue.Mode = dslqueue.ModeOneShot.String()
				}
			}
			policy, err := cfg.Policy()
			if err != nil {
				return err
			}

			queue := dslqueue.NewQueue()
			seeded, err := loader.ReadFiles(paths)
			if err != nil {
				return err
			}
			idsBySource := make(map[string]string, len(seeded))
			for _, p := range seeded {
				queue.Enqueue(p)
				idsBySource[p.Source] = p.ID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Seed.Watch && len(seeded) > 0 {
				watcher, err := loader.NewWatcher(paths, func(path string) {
					data, err := os.ReadFile(path)
					if err != nil {
						logger.Warn("reload failed", "path", path, "error", err)
						return
					}
					fresh, err := dslqueue.NewPayload(path, string(data))
					if err != nil {
						logger.Warn("reload skipped, file is blank", "path", path)
						return
					}
					if queue.Update(idsBySource[path], fresh.Text) {
						logger.Info("payload reloaded", "path", path)
					} else {
						logger.Info("reload skipped, payload already consumed", "path", path)
					}
				})
				if err != nil {
					return err
				}
				watcher.Start()
				defer watcher.Stop()
				logger.Info("watching seed files for changes", "count", len(seeded))
			}

			return server.New(cfg, queue, policy, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "interface to bind")
	cmd.Flags().IntVar(&port, "port", 9001, "port to bind")
	cmd.Flags().StringVar(&endpoint, "endpoint", "/next", "request path the test runner polls for DSL payloads")
	cmd.Flags().StringVar(&mode, "mode", "", "queue mode: oneshot or cycling")
	cmd.Flags().StringVar(&exitCommand, "exit-command", dslqueue.DefaultExitSignal, "payload sent once a oneshot queue is exhausted")
	cmd.Flags().BoolVar(&autoExit, "exit", false, "after serving all payloads, send the exit command instead of HTTP 204")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-read seeded DSL files when they change on disk")

	return cmd
}
