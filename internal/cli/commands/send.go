// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dslqueue/dslqueue/internal/config"
)

// NewSendCommand creates the send command, which enqueues a payload on a
// running server.
func NewSendCommand() *cobra.Command {
	var serverURL string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "send [payload]",
		Short: "Enqueue a DSL payload on a running server",
		Long: `Enqueue a DSL payload on a running dslqueue server.

The payload is taken from the argument, from --file, or from stdin when
the argument is "-".

Examples:
  dslqueue send 'steps: []'
  dslqueue send --file test_dsl/sample_test.yaml
  cat payload.yaml | dslqueue send -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			text, err := readPayload(args, fromFile)
			if err != nil {
				return err
			}

			url := baseURL(cfg, serverURL) + cfg.Endpoints.Enqueue
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, strings.NewReader(text))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "text/plain; charset=utf-8")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("is the server running? %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("enqueue failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued payload %s\n", resp.Header.Get("X-Payload-Id"))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of the running server (defaults to the configured bind address)")
	cmd.Flags().StringVar(&fromFile, "file", "", "read the payload from a file")

	return cmd
}

func readPayload(args []string, fromFile string) (string, error) {
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no payload given: pass an argument, --file, or \"-\" for stdin")
}

func baseURL(cfg config.Config, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	return "http://" + cfg.Addr()
}
