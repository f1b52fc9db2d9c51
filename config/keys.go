// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	LogLevelKey      = "log-level"
	ChannelKey       = "channel"
	BridgeChannelKey = "bridge-channel"
	OwnerKey         = "owner"
	CanonicalKey     = "canonical"
	RemotesKey       = "remotes"
	MintPolicyKey    = "mint-policy"
	NetworkKey       = "network"
	BalancesKey      = "balances"
	ScenarioKey      = "scenario"
)
