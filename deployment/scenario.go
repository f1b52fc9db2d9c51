// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package deployment

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/config"
	"github.com/luxfi/coordinator/payload"
)

// StepResult is the outcome of one scenario step. Failed steps do not stop
// the scenario.
type StepResult struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
	Chain  string `json:"chain,omitempty"`
	// Amount is the amount locked, queued, minted, bridged or emitted, or
	// the number of packets applied by flush and deliver.
	Amount string `json:"amount,omitempty"`
	Fee    string `json:"fee,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Run executes the configured scenario and reports the final state.
func (d *Deployment) Run(ctx context.Context) (*Report, error) {
	results := make([]StepResult, 0, len(d.config.Scenario))
	for i, step := range d.config.Scenario {
		result := StepResult{Index: i, Action: step.Action, Chain: step.Chain}
		amount, fee, err := d.Step(ctx, step)
		if amount != nil {
			result.Amount = amount.Dec()
		}
		if fee != nil {
			result.Fee = fee.Dec()
		}
		if err != nil {
			result.Error = err.Error()
			d.log.Warn("scenario step failed",
				log.Int("index", i),
				log.String("action", step.Action),
				log.Err(err),
			)
		}
		results = append(results, result)
	}

	report, err := d.Report()
	if err != nil {
		return nil, err
	}
	report.Steps = results
	return report, nil
}

// Step executes a single scenario step. It returns the step's amount and
// the native fee paid, if any.
func (d *Deployment) Step(ctx context.Context, step config.Step) (*uint256.Int, *uint256.Int, error) {
	switch step.Action {
	case config.ActionFlush:
		return uint256.NewInt(uint64(d.Network.Flush(ctx))), nil, nil
	case config.ActionDeliver:
		msgType, err := payload.ParseMessageType(step.MessageType)
		if err != nil {
			return nil, nil, err
		}
		return uint256.NewInt(uint64(d.Network.DeliverWhere(ctx, OfType(msgType)))), nil, nil
	case config.ActionEmit:
		amount, err := config.ParseAmount(step.Amount)
		if err != nil {
			return nil, nil, err
		}
		return amount, nil, d.Canonical.Coordinator.Emit(d.owner, amount)
	}

	r, ok := d.Remote(step.Chain)
	if !ok {
		return nil, nil, fmt.Errorf("unknown remote chain %q", step.Chain)
	}
	if step.Action == config.ActionBridge {
		fee, err := r.Sender.EstimateFee(ctx)
		if err != nil {
			return nil, nil, err
		}
		amount, err := r.Sender.Bridge(ctx, fee)
		return amount, fee, err
	}

	account, err := config.ParseAddress(step.Account)
	if err != nil {
		return nil, nil, err
	}
	amount, err := config.ParseAmount(step.Amount)
	if err != nil {
		return nil, nil, err
	}

	switch step.Action {
	case config.ActionLock:
		fee, err := r.Coordinator.EstimateLockFee(ctx, account, amount)
		if err != nil {
			return nil, nil, err
		}
		paid, err := r.Coordinator.Lock(ctx, account, amount, fee)
		return amount, paid, err
	case config.ActionQueueFees:
		fee, err := r.Coordinator.EstimateQueueFeesFee(ctx, account, amount)
		if err != nil {
			return nil, nil, err
		}
		paid, err := r.Coordinator.QueueFees(ctx, r.Booster, account, amount, fee)
		return amount, paid, err
	case config.ActionMint:
		minted, err := r.Coordinator.Mint(r.Booster, account, amount)
		return minted, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown scenario action %q", step.Action)
	}
}

// OfType matches packets carrying a message of type t.
func OfType(t payload.MessageType) func(*coordinator.Packet) bool {
	return func(p *coordinator.Packet) bool {
		msgType, err := payload.TypeOf(p.Payload)
		return err == nil && msgType == t
	}
}
