// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/dslqueue/dslqueue/internal/config"
)

// NewStatusCommand creates the status command, which prints the queue
// depth of a running server.
func NewStatusCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the queue depth of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			url := baseURL(cfg, serverURL) + cfg.Endpoints.Status
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("is the server running? %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status request failed: %s", resp.Status)
			}
			var body struct {
				Size int `json:"size"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued: %d\n", body.Size)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of the running server (defaults to the configured bind address)")

	return cmd
}
