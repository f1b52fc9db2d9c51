// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/coordinator/payload"
)

const (
	ownerAddr    = "0x00000000000000000000000000000000000000a1"
	coordAddr    = "0x00000000000000000000000000000000000000c1"
	receiverAddr = "0x00000000000000000000000000000000000000c2"
	treasuryAddr = "0x00000000000000000000000000000000000000c3"
	remoteAddr   = "0x00000000000000000000000000000000000000d1"
	boosterAddr  = "0x00000000000000000000000000000000000000d2"
	delegateAddr = "0x00000000000000000000000000000000000000d3"
	userAddr     = "0x00000000000000000000000000000000000000e1"
)

func testConfig() Config {
	return Config{
		LogLevel:      LogLevelOff,
		Channel:       defaultChannel,
		BridgeChannel: defaultBridgeChannel,
		Owner:         ownerAddr,
		Canonical: CanonicalChain{
			Name:           "hub",
			Coordinator:    coordAddr,
			BridgeReceiver: receiverAddr,
			Treasury:       treasuryAddr,
		},
		Remotes: []RemoteChain{{
			Name:           "zoo",
			Coordinator:    remoteAddr,
			Booster:        boosterAddr,
			BridgeDelegate: delegateAddr,
		}},
		MintPolicy: MintPolicy{Type: PolicyFixed, Rate: "1.5"},
		Network:    Network{BaseFee: "10", ByteFee: "1", GasPrice: "0"},
		Balances: []Balance{
			{Chain: "zoo", Token: TokenPrimary, Account: userAddr, Amount: "1000"},
		},
		Scenario: []Step{
			{Action: ActionLock, Chain: "zoo", Account: userAddr, Amount: "100"},
			{Action: ActionDeliver, MessageType: "lock"},
			{Action: ActionFlush},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectedErr error
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name:        "unknown log level",
			modify:      func(c *Config) { c.LogLevel = "trace" },
			expectedErr: errUnknownLogLevel,
		},
		{
			name:        "zero channel",
			modify:      func(c *Config) { c.Channel = 0 },
			expectedErr: errZeroChannel,
		},
		{
			name:        "same channels",
			modify:      func(c *Config) { c.BridgeChannel = c.Channel },
			expectedErr: errSameChannel,
		},
		{
			name:        "missing owner",
			modify:      func(c *Config) { c.Owner = "" },
			expectedErr: errMissingOwner,
		},
		{
			name:        "zero address",
			modify:      func(c *Config) { c.Canonical.Treasury = "0x0000000000000000000000000000000000000000" },
			expectedErr: errInvalidAddress,
		},
		{
			name:        "no remotes",
			modify:      func(c *Config) { c.Remotes = nil },
			expectedErr: errNoRemotes,
		},
		{
			name: "duplicate chain",
			modify: func(c *Config) {
				c.Remotes[0].Name = c.Canonical.Name
			},
			expectedErr: errDuplicateChain,
		},
		{
			name:        "missing remote name",
			modify:      func(c *Config) { c.Remotes[0].Name = "" },
			expectedErr: errMissingChainName,
		},
		{
			name:        "unknown policy",
			modify:      func(c *Config) { c.MintPolicy.Type = "auction" },
			expectedErr: errUnknownPolicy,
		},
		{
			name:        "balance on unknown chain",
			modify:      func(c *Config) { c.Balances[0].Chain = "moon" },
			expectedErr: errUnknownChain,
		},
		{
			name:        "unknown token",
			modify:      func(c *Config) { c.Balances[0].Token = "gold" },
			expectedErr: errUnknownToken,
		},
		{
			name:        "unknown action",
			modify:      func(c *Config) { c.Scenario[0].Action = "swap" },
			expectedErr: errUnknownAction,
		},
		{
			name:        "step on canonical chain",
			modify:      func(c *Config) { c.Scenario[0].Chain = "hub" },
			expectedErr: errUnknownChain,
		},
		{
			name:        "deliver without type",
			modify:      func(c *Config) { c.Scenario[1].MessageType = "" },
			expectedErr: errUnknownDeliveries,
		},
		{
			name: "emit without amount",
			modify: func(c *Config) {
				c.Scenario = append(c.Scenario, Step{Action: ActionEmit})
			},
			expectedErr: errZeroEmission,
		},
		{
			name:        "deliver unknown type",
			modify:      func(c *Config) { c.Scenario[1].MessageType = "swap" },
			expectedErr: payload.ErrUnknownType,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := testConfig()
			test.modify(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestValidateAmounts(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	cfg.Network.BaseFee = "-1"
	require.Error(cfg.Validate())

	cfg = testConfig()
	cfg.MintPolicy = MintPolicy{Type: PolicyTracked, SeedMint: "10", SeedReward: "x"}
	require.Error(cfg.Validate())

	cfg.MintPolicy.SeedReward = "4"
	require.NoError(cfg.Validate())
}

func TestChainID(t *testing.T) {
	require := require.New(t)

	require.Equal(ChainID("zoo"), ChainID("zoo"))
	require.NotEqual(ChainID("zoo"), ChainID("hub"))
}

func TestGetters(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	cfg.Network.RetryIntervalMS = 25
	require.Equal(uint16(101), uint16(cfg.GetChannel()))
	require.Equal(uint16(102), uint16(cfg.GetBridgeChannel()))
	require.Equal(int64(25), cfg.GetRetryInterval().Milliseconds())

	rate, err := cfg.GetMintRate()
	require.NoError(err)
	require.Equal("1.5", rate.String())

	_, ok := cfg.Remote("zoo")
	require.True(ok)
	_, ok = cfg.Remote("hub")
	require.False(ok)
}

func TestBuildViper(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	cfg.Channel = 0
	cfg.BridgeChannel = 0
	cfg.MintPolicy.Type = ""
	b, err := json.Marshal(cfg)
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, b, 0o600))

	fs := BuildFlagSet()
	require.NoError(fs.Parse([]string{"--" + ConfigFileKey, path}))

	v, err := BuildViper(fs)
	require.NoError(err)

	// Zero values written to the file override the defaults.
	_, err = NewConfig(v)
	require.ErrorIs(err, errZeroChannel)

	// Remove the explicit zeros so the defaults apply.
	var raw map[string]any
	require.NoError(json.Unmarshal(b, &raw))
	delete(raw, ChannelKey)
	delete(raw, BridgeChannelKey)
	delete(raw[MintPolicyKey].(map[string]any), "type")
	b, err = json.Marshal(raw)
	require.NoError(err)
	require.NoError(os.WriteFile(path, b, 0o600))

	v, err = BuildViper(fs)
	require.NoError(err)
	built, err := NewConfig(v)
	require.NoError(err)
	require.Equal(uint16(defaultChannel), built.Channel)
	require.Equal(uint16(defaultBridgeChannel), built.BridgeChannel)
	require.Equal(PolicyFixed, built.MintPolicy.Type)
	require.Equal(uint64(defaultMaxRetries), built.Network.MaxRetries)
	require.Len(built.Scenario, 3)
}

func TestBuildViperMissingFile(t *testing.T) {
	t.Setenv(ConfigFileEnvKey, "")
	_, err := BuildViper(BuildFlagSet())
	require.ErrorIs(t, err, errMissingConfigFile)
}
