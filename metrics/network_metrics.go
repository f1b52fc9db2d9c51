// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

type NetworkMetrics struct {
	sentPacketCount      *prometheus.CounterVec
	deliveredPacketCount *prometheus.CounterVec
	failedPacketCount    *prometheus.CounterVec
	droppedPacketCount   *prometheus.CounterVec
	duplicatePacketCount *prometheus.CounterVec
	storedPayloads       *prometheus.GaugeVec
	nativeFeesCollected  *prometheus.CounterVec
}

func NewNetworkMetrics(registerer prometheus.Registerer) *NetworkMetrics {
	m := NetworkMetrics{
		sentPacketCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "network_sent_packet_count",
				Help: "Number of packets accepted for delivery",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		deliveredPacketCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "network_delivered_packet_count",
				Help: "Number of packets the destination applied",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		failedPacketCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "network_failed_packet_count",
				Help: "Number of delivery attempts that failed with a retryable error",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		droppedPacketCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "network_dropped_packet_count",
				Help: "Number of packets dropped after a permanent rejection",
			},
			[]string{"source_chain_id", "destination_chain_id", "reason"},
		),
		duplicatePacketCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "network_duplicate_packet_count",
				Help: "Number of redelivered packets suppressed",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		storedPayloads: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "network_stored_payloads",
				Help: "Number of lanes blocked by a stored payload",
			},
			[]string{"destination_chain_id"},
		),
		nativeFeesCollected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "network_native_fees_collected",
				Help: "Native fees charged to senders",
			},
			[]string{"source_chain_id"},
		),
	}

	registerer.MustRegister(m.sentPacketCount)
	registerer.MustRegister(m.deliveredPacketCount)
	registerer.MustRegister(m.failedPacketCount)
	registerer.MustRegister(m.droppedPacketCount)
	registerer.MustRegister(m.duplicatePacketCount)
	registerer.MustRegister(m.storedPayloads)
	registerer.MustRegister(m.nativeFeesCollected)

	return &m
}

func (m *NetworkMetrics) Sent(src, dst string, fee *uint256.Int) {
	if m == nil {
		return
	}
	m.sentPacketCount.WithLabelValues(src, dst).Inc()
	m.nativeFeesCollected.WithLabelValues(src).Add(Float(fee))
}

func (m *NetworkMetrics) Delivered(src, dst string) {
	if m == nil {
		return
	}
	m.deliveredPacketCount.WithLabelValues(src, dst).Inc()
}

func (m *NetworkMetrics) Failed(src, dst string) {
	if m == nil {
		return
	}
	m.failedPacketCount.WithLabelValues(src, dst).Inc()
}

func (m *NetworkMetrics) Dropped(src, dst, reason string) {
	if m == nil {
		return
	}
	m.droppedPacketCount.WithLabelValues(src, dst, reason).Inc()
}

func (m *NetworkMetrics) Duplicate(src, dst string) {
	if m == nil {
		return
	}
	m.duplicatePacketCount.WithLabelValues(src, dst).Inc()
}

func (m *NetworkMetrics) SetStored(dst string, n int) {
	if m == nil {
		return
	}
	m.storedPayloads.WithLabelValues(dst).Set(float64(n))
}
