// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// BuildFlagSet returns the flags read by BuildViper.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("coordinator", pflag.ContinueOnError)
	fs.String(ConfigFileKey, "", "Path to the deployment config file (JSON)")
	fs.String(LogLevelKey, defaultLogLevel, "Log level: off or info")
	return fs
}

// DisplayUsageText prints the flags and environment variables understood
// by BuildViper.
func DisplayUsageText() {
	usage := fmt.Sprintf(`
Usage: coordinator simulate [options]

Options:
  --%s string  Path to the deployment config file (JSON). Also read from %s.
  --%s string    Log level: %s or %s (default %q)
`,
		ConfigFileKey, ConfigFileEnvKey,
		LogLevelKey, LogLevelOff, LogLevelInfo, defaultLogLevel,
	)
	fmt.Fprint(os.Stderr, usage)
}
