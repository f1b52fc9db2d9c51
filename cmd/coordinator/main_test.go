// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/coordinator/deployment"
	"github.com/luxfi/coordinator/payload"
)

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected decodedMessage
	}{
		{
			name: "lock",
			args: []string{"--type", "lock", "--address", "0x00000000000000000000000000000000000000f1", "--amount", "100"},
			expected: decodedMessage{
				Type:        "lock",
				Beneficiary: "0x00000000000000000000000000000000000000f1",
				Amount:      "100",
			},
		},
		{
			name: "queue fees",
			args: []string{"--type", "queue_fees", "--address", "0x00000000000000000000000000000000000000f1", "--reward", "7"},
			expected: decodedMessage{
				Type:           "queue_fees",
				OriginalSender: "0x00000000000000000000000000000000000000f1",
				RewardAmount:   "7",
			},
		},
		{
			name: "fees callback",
			args: []string{"--type", "fees_callback", "--amount", "15", "--reward", "10"},
			expected: decodedMessage{
				Type:         "fees_callback",
				MintAmount:   "15",
				RewardAmount: "10",
			},
		},
		{
			name: "transfer",
			args: []string{"--type", "transfer", "--address", "0x00000000000000000000000000000000000000f1", "--amount", "3"},
			expected: decodedMessage{
				Type:   "transfer",
				To:     "0x00000000000000000000000000000000000000f1",
				Amount: "3",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			encoded, err := run(t, append([]string{"encode"}, test.args...)...)
			require.NoError(err)
			encoded = strings.TrimSpace(encoded)
			require.True(strings.HasPrefix(encoded, "0x"))

			decoded, err := run(t, "decode", "--data", encoded)
			require.NoError(err)
			var got decodedMessage
			require.NoError(json.Unmarshal([]byte(decoded), &got))
			// Addresses are printed checksummed.
			got.To = strings.ToLower(got.To)
			got.Beneficiary = strings.ToLower(got.Beneficiary)
			got.OriginalSender = strings.ToLower(got.OriginalSender)
			require.Equal(test.expected, got)
		})
	}
}

func TestEncodeUnknownType(t *testing.T) {
	_, err := run(t, "encode", "--type", "swap")
	require.ErrorIs(t, err, payload.ErrUnknownType)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := run(t, "decode", "--data", "0x0100")
	require.ErrorIs(t, err, payload.ErrTruncated)
}

const simulateConfig = `{
  "log-level": "off",
  "owner": "0x00000000000000000000000000000000000000a1",
  "canonical": {
    "name": "hub",
    "coordinator": "0x00000000000000000000000000000000000000c1",
    "bridge-receiver": "0x00000000000000000000000000000000000000c2",
    "treasury": "0x00000000000000000000000000000000000000c3"
  },
  "remotes": [{
    "name": "zoo",
    "coordinator": "0x00000000000000000000000000000000000000d1",
    "booster": "0x00000000000000000000000000000000000000d2",
    "bridge-delegate": "0x00000000000000000000000000000000000000d3"
  }],
  "mint-policy": {"type": "fixed", "rate": "2"},
  "network": {"base-fee": "1"},
  "balances": [
    {"chain": "hub", "token": "primary", "account": "0x00000000000000000000000000000000000000c1", "amount": "1000"},
    {"chain": "zoo", "token": "primary", "account": "0x00000000000000000000000000000000000000f1", "amount": "100"},
    {"chain": "zoo", "token": "reward", "account": "0x00000000000000000000000000000000000000d2", "amount": "50"}
  ],
  "scenario": [
    {"action": "lock", "chain": "zoo", "account": "0x00000000000000000000000000000000000000f1", "amount": "60"},
    {"action": "queue-fees", "chain": "zoo", "account": "0x00000000000000000000000000000000000000f1", "amount": "20"},
    {"action": "flush"},
    {"action": "mint", "chain": "zoo", "account": "0x00000000000000000000000000000000000000f1", "amount": "5"},
    {"action": "bridge", "chain": "zoo"},
    {"action": "flush"}
  ]
}`

func TestSimulate(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(simulateConfig), 0o600))

	out, err := run(t, "simulate", "--config-file", path)
	require.NoError(err)

	var report deployment.Report
	require.NoError(json.Unmarshal([]byte(out), &report))
	require.Len(report.Steps, 6)
	for _, step := range report.Steps {
		require.Empty(step.Error)
	}
	require.Equal("60", report.Canonical.TotalLocked)
	require.Equal("20", report.Canonical.Treasury)
	require.Equal("960", report.Canonical.Escrow)
	require.Len(report.Remotes, 1)
	require.Equal("2", report.Remotes[0].MintRate)
	require.Equal("30", report.Remotes[0].Escrow)
	require.Equal("0", report.Remotes[0].OutstandingDebt)
}
