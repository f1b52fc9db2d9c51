// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package deployment

import "github.com/luxfi/coordinator/canonical"

// Report is a snapshot of a deployment. Amounts are decimal strings.
type Report struct {
	Steps     []StepResult    `json:"steps,omitempty"`
	Canonical CanonicalReport `json:"canonical"`
	Remotes   []RemoteReport  `json:"remotes"`
	Network   NetworkReport   `json:"network"`
}

type CanonicalReport struct {
	Name        string `json:"name"`
	ChainID     string `json:"chain-id"`
	TotalLocked string `json:"total-locked"`
	// Escrow is the primary token the coordinator holds for minting.
	Escrow   string `json:"escrow"`
	Treasury string `json:"treasury"`
	// MintRate is the cumulative ratio of a tracked mint policy.
	MintRate string `json:"mint-rate,omitempty"`
}

type RemoteReport struct {
	Name     string `json:"name"`
	ChainID  string `json:"chain-id"`
	MintRate string `json:"mint-rate"`
	// Escrow is the primary token the coordinator can hand out via mint.
	Escrow          string `json:"escrow"`
	DelegateBalance string `json:"delegate-balance"`
	FeeDebt         string `json:"fee-debt"`
	SettledFeeDebt  string `json:"settled-fee-debt"`
	OutstandingDebt string `json:"outstanding-fee-debt"`
	FeesCollected   string `json:"fees-collected"`
}

type NetworkReport struct {
	Pending   int `json:"pending"`
	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
	Stored    int `json:"stored"`
}

// Report snapshots balances, fee debt and network state.
func (d *Deployment) Report() (*Report, error) {
	c := d.Canonical
	locked, err := c.Locker.TotalLocked()
	if err != nil {
		return nil, err
	}
	escrow, err := c.Token.BalanceOf(c.Coordinator.Address())
	if err != nil {
		return nil, err
	}
	treasury, err := c.RewardToken.BalanceOf(c.Treasury)
	if err != nil {
		return nil, err
	}
	report := &Report{
		Canonical: CanonicalReport{
			Name:        c.Name,
			ChainID:     c.ID.String(),
			TotalLocked: locked.Dec(),
			Escrow:      escrow.Dec(),
			Treasury:    treasury.Dec(),
		},
	}

	if tracker, ok := c.Policy.(canonical.EmissionTracker); ok {
		if ratio, err := tracker.Ratio(); err == nil {
			report.Canonical.MintRate = ratio.String()
		}
	}

	for _, r := range d.Remotes {
		rr, err := d.remoteReport(r)
		if err != nil {
			return nil, err
		}
		report.Remotes = append(report.Remotes, rr)
	}

	stored, err := d.Network.Stored()
	if err != nil {
		return nil, err
	}
	report.Network = NetworkReport{
		Pending:   d.Network.Pending(),
		Delivered: len(d.Network.Delivered()),
		Dropped:   len(d.Network.Dropped()),
		Stored:    len(stored),
	}
	return report, nil
}

func (d *Deployment) remoteReport(r *Remote) (RemoteReport, error) {
	rate, err := r.Coordinator.MintRate()
	if err != nil {
		return RemoteReport{}, err
	}
	escrow, err := r.Token.BalanceOf(r.Coordinator.Address())
	if err != nil {
		return RemoteReport{}, err
	}
	delegate, _, err := r.Coordinator.BridgeDelegate()
	if err != nil {
		return RemoteReport{}, err
	}
	delegateBalance, err := r.RewardToken.BalanceOf(delegate)
	if err != nil {
		return RemoteReport{}, err
	}
	debt, err := d.Canonical.Coordinator.FeeDebt(r.ID)
	if err != nil {
		return RemoteReport{}, err
	}
	settled, err := d.Canonical.Coordinator.SettledFeeDebt(r.ID)
	if err != nil {
		return RemoteReport{}, err
	}
	outstanding, err := d.Canonical.Coordinator.OutstandingFeeDebt(r.ID)
	if err != nil {
		return RemoteReport{}, err
	}
	return RemoteReport{
		Name:            r.Name,
		ChainID:         r.ID.String(),
		MintRate:        rate.String(),
		Escrow:          escrow.Dec(),
		DelegateBalance: delegateBalance.Dec(),
		FeeDebt:         debt.Dec(),
		SettledFeeDebt:  settled.Dec(),
		OutstandingDebt: outstanding.Dec(),
		FeesCollected:   d.Network.FeesCollected(r.ID).Dec(),
	}, nil
}
