// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics instruments the coordinators and the in-memory network.
// A nil metrics value records nothing.
package metrics

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

type CoordinatorMetrics struct {
	receivedMessageCount *prometheus.CounterVec
	rejectedMessageCount *prometheus.CounterVec
	sentMessageCount     *prometheus.CounterVec
	feeDebt              *prometheus.GaugeVec
	settledFeeDebt       *prometheus.GaugeVec
	mintRate             *prometheus.GaugeVec
	mintedAmount         *prometheus.CounterVec
}

func NewCoordinatorMetrics(registerer prometheus.Registerer) *CoordinatorMetrics {
	m := CoordinatorMetrics{
		receivedMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_received_message_count",
				Help: "Number of inbound messages applied",
			},
			[]string{"chain_id", "source_chain_id", "message_type"},
		),
		rejectedMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_rejected_message_count",
				Help: "Number of inbound messages rejected",
			},
			[]string{"chain_id", "source_chain_id", "reason"},
		),
		sentMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_sent_message_count",
				Help: "Number of outbound messages handed to the transport",
			},
			[]string{"chain_id", "destination_chain_id", "message_type"},
		),
		feeDebt: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coordinator_fee_debt",
				Help: "Accumulated reward token fee debt per remote chain",
			},
			[]string{"chain_id", "remote_chain_id"},
		),
		settledFeeDebt: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coordinator_settled_fee_debt",
				Help: "Reward token value received through the bridge delegate per remote chain",
			},
			[]string{"chain_id", "remote_chain_id"},
		),
		mintRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coordinator_mint_rate",
				Help: "Cached mint rate",
			},
			[]string{"chain_id"},
		),
		mintedAmount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_minted_amount",
				Help: "Primary token handed out by mint",
			},
			[]string{"chain_id"},
		),
	}

	registerer.MustRegister(m.receivedMessageCount)
	registerer.MustRegister(m.rejectedMessageCount)
	registerer.MustRegister(m.sentMessageCount)
	registerer.MustRegister(m.feeDebt)
	registerer.MustRegister(m.settledFeeDebt)
	registerer.MustRegister(m.mintRate)
	registerer.MustRegister(m.mintedAmount)

	return &m
}

func (m *CoordinatorMetrics) Received(chainID, srcChainID, messageType string) {
	if m == nil {
		return
	}
	m.receivedMessageCount.WithLabelValues(chainID, srcChainID, messageType).Inc()
}

func (m *CoordinatorMetrics) Rejected(chainID, srcChainID, reason string) {
	if m == nil {
		return
	}
	m.rejectedMessageCount.WithLabelValues(chainID, srcChainID, reason).Inc()
}

func (m *CoordinatorMetrics) Sent(chainID, dstChainID, messageType string) {
	if m == nil {
		return
	}
	m.sentMessageCount.WithLabelValues(chainID, dstChainID, messageType).Inc()
}

func (m *CoordinatorMetrics) SetFeeDebt(chainID, remoteChainID string, debt *uint256.Int) {
	if m == nil {
		return
	}
	m.feeDebt.WithLabelValues(chainID, remoteChainID).Set(Float(debt))
}

func (m *CoordinatorMetrics) SetSettledFeeDebt(chainID, remoteChainID string, settled *uint256.Int) {
	if m == nil {
		return
	}
	m.settledFeeDebt.WithLabelValues(chainID, remoteChainID).Set(Float(settled))
}

// SetMintRate records a rate given as a 1e18 scaled integer.
func (m *CoordinatorMetrics) SetMintRate(chainID string, scaled *uint256.Int) {
	if m == nil {
		return
	}
	rate := new(big.Float).Quo(
		new(big.Float).SetInt(scaled.ToBig()),
		new(big.Float).SetFloat64(1e18),
	)
	f, _ := rate.Float64()
	m.mintRate.WithLabelValues(chainID).Set(f)
}

func (m *CoordinatorMetrics) AddMinted(chainID string, amount *uint256.Int) {
	if m == nil {
		return
	}
	m.mintedAmount.WithLabelValues(chainID).Add(Float(amount))
}

// Float converts an amount for export. Precision loss above 2^53 is
// acceptable for gauges.
func Float(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
