// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	dslqueue "github.com/dslqueue/dslqueue"
)

// Config defines the dslqueue.yaml schema.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Endpoints struct {
		Poll    string `yaml:"poll"`
		Enqueue string `yaml:"enqueue"`
		Status  string `yaml:"status"`
	} `yaml:"endpoints"`
	Queue struct {
		Mode        string `yaml:"mode"`
		ExitCommand string `yaml:"exit_command"`
		AutoExit    bool   `yaml:"auto_exit"`
	} `yaml:"queue"`
	Probes []string `yaml:"probes"`
	Seed   struct {
		Paths []string `yaml:"paths"`
		Watch bool     `yaml:"watch"`
	} `yaml:"seed"`
}

// Load reads dslqueue.yaml from the given path. If missing, it returns defaults.
func Load(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.applyDefaults()
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	c.applyDefaults()
	if c.Queue.Mode != "" {
		if _, err := dslqueue.ParseMode(c.Queue.Mode); err != nil {
			return c, err
		}
	}
	for _, endpoint := range []string{c.Endpoints.Poll, c.Endpoints.Enqueue, c.Endpoints.Status} {
		if !strings.HasPrefix(endpoint, "/") {
			return c, fmt.Errorf("endpoint %q must start with /", endpoint)
		}
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9001
	}
	if c.Endpoints.Poll == "" {
		c.Endpoints.Poll = "/next"
	}
	if c.Endpoints.Enqueue == "" {
		c.Endpoints.Enqueue = "/enqueue"
	}
	if c.Endpoints.Status == "" {
		c.Endpoints.Status = "/status"
	}
	// Queue.Mode intentionally has no default here: the serve command
	// picks cycling for file-seeded runs and oneshot for interactive ones
	// when neither the manifest nor a flag decides.
	if c.Queue.ExitCommand == "" {
		c.Queue.ExitCommand = dslqueue.DefaultExitSignal
	}
	if c.Probes == nil {
		c.Probes = []string{"HeadlessChrome"}
	}
}

// Policy converts the queue section into the core poll policy.
func (c Config) Policy() (dslqueue.Policy, error) {
	mode, err := dslqueue.ParseMode(c.Queue.Mode)
	if err != nil {
		return dslqueue.Policy{}, err
	}
	return dslqueue.Policy{
		Mode:          mode,
		ExitSignal:    c.Queue.ExitCommand,
		AutoExit:      c.Queue.AutoExit,
		ProbePatterns: c.Probes,
	}, nil
}

// Addr returns the host:port bind address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
