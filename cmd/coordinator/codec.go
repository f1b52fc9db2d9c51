// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/geth/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/luxfi/coordinator/config"
	"github.com/luxfi/coordinator/payload"
)

// decodedMessage is the JSON form of a decoded payload. Amounts are
// decimal strings.
type decodedMessage struct {
	Type           string `json:"type"`
	To             string `json:"to,omitempty"`
	Beneficiary    string `json:"beneficiary,omitempty"`
	OriginalSender string `json:"original-sender,omitempty"`
	Amount         string `json:"amount,omitempty"`
	MintAmount     string `json:"mint-amount,omitempty"`
	RewardAmount   string `json:"reward-amount,omitempty"`
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a coordinator message",
		Long: `Encode a coordinator message as hex.

  lock            --address beneficiary --amount amount
  queue_fees      --address original sender --reward reward amount
  fees_callback   --amount mint amount --reward reward amount
  transfer        --address recipient --amount amount`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			typeName, _ := cmd.Flags().GetString("type")
			address, _ := cmd.Flags().GetString("address")
			amount, _ := cmd.Flags().GetString("amount")
			reward, _ := cmd.Flags().GetString("reward")

			msg, err := buildMessage(typeName, address, amount, reward)
			if err != nil {
				return err
			}
			b, err := payload.Encode(msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(b))
			return nil
		},
	}
	cmd.Flags().StringP("type", "t", "", "Message type (lock, queue_fees, fees_callback, transfer)")
	cmd.Flags().StringP("address", "a", "", "Beneficiary, original sender or recipient address")
	cmd.Flags().String("amount", "", "Amount (decimal)")
	cmd.Flags().String("reward", "", "Reward amount (decimal)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func buildMessage(typeName, address, amount, reward string) (payload.Message, error) {
	msgType, err := payload.ParseMessageType(typeName)
	if err != nil {
		return nil, err
	}

	switch msgType {
	case payload.TypeLock:
		addr, err := config.ParseAddress(address)
		if err != nil {
			return nil, err
		}
		a, err := config.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		return &payload.Lock{Beneficiary: addr, Amount: a}, nil
	case payload.TypeQueueFees:
		addr, err := config.ParseAddress(address)
		if err != nil {
			return nil, err
		}
		r, err := config.ParseAmount(reward)
		if err != nil {
			return nil, err
		}
		return &payload.QueueFees{OriginalSender: addr, RewardAmount: r}, nil
	case payload.TypeFeesCallback:
		a, err := config.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		r, err := config.ParseAmount(reward)
		if err != nil {
			return nil, err
		}
		return &payload.FeesCallback{MintAmount: a, RewardAmount: r}, nil
	default:
		addr, err := config.ParseAddress(address)
		if err != nil {
			return nil, err
		}
		a, err := config.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		return &payload.TokenTransfer{To: addr, Amount: a}, nil
	}
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a coordinator message",
		Long:  `Decode a hex-encoded coordinator message and print it as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataHex, _ := cmd.Flags().GetString("data")

			data, err := hexutil.Decode(dataHex)
			if err != nil {
				return fmt.Errorf("invalid hex data: %w", err)
			}
			msg, err := payload.Parse(data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(describe(msg))
		},
	}
	cmd.Flags().StringP("data", "d", "", "Hex message to decode (0x prefixed)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func describe(msg payload.Message) decodedMessage {
	out := decodedMessage{Type: msg.Type().String()}
	switch m := msg.(type) {
	case *payload.Lock:
		out.Beneficiary = m.Beneficiary.Hex()
		out.Amount = m.Amount.Dec()
	case *payload.QueueFees:
		out.OriginalSender = m.OriginalSender.Hex()
		out.RewardAmount = m.RewardAmount.Dec()
	case *payload.FeesCallback:
		out.MintAmount = m.MintAmount.Dec()
		out.RewardAmount = m.RewardAmount.Dec()
	case *payload.TokenTransfer:
		out.To = m.To.Hex()
		out.Amount = m.Amount.Dec()
	}
	return out
}
