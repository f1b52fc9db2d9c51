// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/coordinator"
	"github.com/luxfi/coordinator/ledger"
	"github.com/luxfi/coordinator/metrics"
	"github.com/luxfi/coordinator/payload"
)

const channel coordinator.Channel = 101

var (
	owner     = common.HexToAddress("0x0e")
	self      = common.HexToAddress("0xc0")
	peer      = common.HexToAddress("0xca")
	booster   = common.HexToAddress("0xb0")
	delegate  = common.HexToAddress("0xde")
	alice     = common.HexToAddress("0xa11ce")
	stranger  = common.HexToAddress("0x5e")
	chainID   = ids.ID{0x02}
	canonical = ids.ID{0x01}
)

type env struct {
	c         *Coordinator
	transport *coordinator.FakeTransport
	token     *ledger.Token
	reward    *ledger.Token
}

func newEnv(t *testing.T) *env {
	require := require.New(t)

	e := &env{
		transport: &coordinator.FakeTransport{Fee: uint256.NewInt(10)},
		token:     ledger.NewToken("LUX", memdb.New()),
		reward:    ledger.NewToken("RWD", memdb.New()),
	}
	c, err := New(Config{
		ChainID:          chainID,
		Address:          self,
		CanonicalChainID: canonical,
		Channel:          channel,
		GasLimits:        map[payload.MessageType]uint64{payload.TypeLock: 200_000},
		Transport:        e.transport,
		Token:            e.token,
		RewardToken:      e.reward,
		Authority:        coordinator.NewOwner(owner),
		DB:               memdb.New(),
		Log:              log.NewNoOpLogger(),
		Metrics:          metrics.NewCoordinatorMetrics(prometheus.NewRegistry()),
	})
	require.NoError(err)
	require.NoError(c.SetTrustedRemote(owner, channel, canonical, peer))
	require.NoError(c.SetBooster(owner, booster))
	require.NoError(c.SetBridgeDelegate(owner, delegate))
	e.c = c
	return e
}

func (e *env) packet(src common.Address, msg payload.Message) *coordinator.Packet {
	return &coordinator.Packet{
		SrcChainID: canonical,
		SrcAddress: src,
		DstChainID: chainID,
		DstAddress: self,
		Channel:    channel,
		Payload:    msg.Bytes(),
	}
}

func (e *env) callback(src common.Address, mint, reward uint64) error {
	return e.c.Receive(context.Background(), e.packet(src, &payload.FeesCallback{
		MintAmount:   uint256.NewInt(mint),
		RewardAmount: uint256.NewInt(reward),
	}))
}

func (e *env) rate(t *testing.T) coordinator.MintRate {
	rate, err := e.c.MintRate()
	require.NoError(t, err)
	return rate
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{Address: self})
	require.ErrorIs(t, err, errMissingTransport)
}

func TestInitialMintRateIsZero(t *testing.T) {
	e := newEnv(t)
	require.True(t, e.rate(t).IsZero())
}

func TestFeesCallbackReplacesRate(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.callback(peer, 100, 10))
	require.True(e.rate(t).Equal(coordinator.MintRateFromUint64(10)))

	require.NoError(e.callback(peer, 50, 10))
	require.True(e.rate(t).Equal(coordinator.MintRateFromUint64(5)))
}

func TestFeesCallbackZeroReward(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.callback(peer, 30, 10))

	err := e.callback(peer, 5, 0)
	require.ErrorIs(err, coordinator.ErrArithmetic)
	require.False(coordinator.IsPermanent(err))
	require.True(e.rate(t).Equal(coordinator.MintRateFromUint64(3)))
}

func TestReceiveAuthentication(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *coordinator.Packet)
	}{
		{
			name:   "wrong address",
			mutate: func(p *coordinator.Packet) { p.SrcAddress = stranger },
		},
		{
			name:   "wrong chain",
			mutate: func(p *coordinator.Packet) { p.SrcChainID = ids.ID{0x09} },
		},
		{
			name:   "wrong channel",
			mutate: func(p *coordinator.Packet) { p.Channel = channel + 1 },
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			e := newEnv(t)

			for _, msg := range []payload.Message{
				&payload.FeesCallback{MintAmount: uint256.NewInt(7), RewardAmount: uint256.NewInt(1)},
				&payload.TokenTransfer{To: alice, Amount: uint256.NewInt(7)},
			} {
				p := e.packet(peer, msg)
				test.mutate(p)

				err := e.c.Receive(context.Background(), p)
				require.ErrorIs(err, coordinator.ErrAuthentication)
				require.True(coordinator.IsPermanent(err))
			}
			require.True(e.rate(t).IsZero())

			balance, err := e.token.BalanceOf(alice)
			require.NoError(err)
			require.True(balance.IsZero())
		})
	}
}

func TestReceiveUnexpectedMessage(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	err := e.c.Receive(context.Background(), e.packet(peer, &payload.Lock{Beneficiary: alice, Amount: uint256.NewInt(1)}))
	require.ErrorIs(err, coordinator.ErrMalformed)

	p := e.packet(peer, &payload.Lock{Beneficiary: alice, Amount: uint256.NewInt(1)})
	p.Payload = []byte{byte(payload.KindCustom), 0x7f}
	err = e.c.Receive(context.Background(), p)
	require.ErrorIs(err, payload.ErrUnknownType)
}

func TestReceiveTransfer(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.c.Receive(context.Background(), e.packet(peer, &payload.TokenTransfer{To: self, Amount: uint256.NewInt(500)})))

	balance, err := e.token.BalanceOf(self)
	require.NoError(err)
	require.Equal(uint256.NewInt(500), balance)
}

func TestMint(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.token.Credit(self, uint256.NewInt(1_000)))

	// zero rate mints nothing
	transferred, err := e.c.Mint(booster, alice, uint256.NewInt(3))
	require.NoError(err)
	require.True(transferred.IsZero())

	// 5/2 = 2.5, 3 * 2.5 = 7.5 rounds down to 7
	require.NoError(e.callback(peer, 5, 2))
	transferred, err = e.c.Mint(booster, alice, uint256.NewInt(3))
	require.NoError(err)
	require.Equal(uint256.NewInt(7), transferred)

	balance, err := e.token.BalanceOf(alice)
	require.NoError(err)
	require.Equal(uint256.NewInt(7), balance)

	balance, err = e.token.BalanceOf(self)
	require.NoError(err)
	require.Equal(uint256.NewInt(993), balance)
}

func TestMintUsesStaleRateUntilCallback(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.token.Credit(self, uint256.NewInt(1_000)))
	require.NoError(e.callback(peer, 2, 1))

	_, err := e.c.QueueFees(context.Background(), booster, alice, uint256.NewInt(0), uint256.NewInt(10))
	require.ErrorIs(err, coordinator.ErrArithmetic)

	require.NoError(e.reward.Credit(booster, uint256.NewInt(4)))
	_, err = e.c.QueueFees(context.Background(), booster, alice, uint256.NewInt(4), uint256.NewInt(10))
	require.NoError(err)

	transferred, err := e.c.Mint(booster, alice, uint256.NewInt(10))
	require.NoError(err)
	require.Equal(uint256.NewInt(20), transferred)
}

func TestMintUnauthorized(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.token.Credit(self, uint256.NewInt(100)))
	require.NoError(e.callback(peer, 1, 1))

	for _, caller := range []common.Address{alice, owner, self, stranger} {
		_, err := e.c.Mint(caller, caller, uint256.NewInt(10))
		require.ErrorIs(err, coordinator.ErrUnauthorizedCaller)
	}

	balance, err := e.token.BalanceOf(self)
	require.NoError(err)
	require.Equal(uint256.NewInt(100), balance)
}

func TestMintNilAmount(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.token.Credit(self, uint256.NewInt(100)))
	require.NoError(e.callback(peer, 1, 1))

	var (
		transferred *uint256.Int
		err         error
	)
	require.NotPanics(func() {
		transferred, err = e.c.Mint(booster, alice, nil)
	})
	require.ErrorIs(err, coordinator.ErrArithmetic)
	require.Nil(transferred)

	balance, err := e.token.BalanceOf(self)
	require.NoError(err)
	require.Equal(uint256.NewInt(100), balance)
}

func TestMintInsufficientCoordinatorBalance(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.callback(peer, 1, 1))
	_, err := e.c.Mint(booster, alice, uint256.NewInt(10))
	require.ErrorIs(err, coordinator.ErrArithmetic)
}

func TestLock(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.token.Credit(alice, uint256.NewInt(100)))

	fee, err := e.c.Lock(context.Background(), alice, uint256.NewInt(60), uint256.NewInt(15))
	require.NoError(err)
	require.Equal(uint256.NewInt(10), fee)

	balance, err := e.token.BalanceOf(alice)
	require.NoError(err)
	require.Equal(uint256.NewInt(40), balance)

	sent := e.transport.Sent()
	require.Len(sent, 1)
	require.Equal(canonical, sent[0].DstChainID)
	require.Equal(peer, sent[0].DstAddress)
	require.Equal(channel, sent[0].Channel)
	require.Equal(alice, sent[0].RefundAddress)
	require.Equal(uint64(200_000), sent[0].Fee.GasLimit)

	msg, err := payload.Parse(sent[0].Payload)
	require.NoError(err)
	require.Equal(&payload.Lock{Beneficiary: alice, Amount: uint256.NewInt(60)}, msg)
}

func TestLockAtomicity(t *testing.T) {
	tests := []struct {
		name      string
		balance   uint64
		amount    uint64
		fee       uint64
		sendErr   error
		wantErrIs error
	}{
		{
			name:      "insufficient balance",
			balance:   59,
			amount:    60,
			fee:       10,
			wantErrIs: coordinator.ErrArithmetic,
		},
		{
			name:      "zero amount",
			balance:   10,
			amount:    0,
			fee:       10,
			wantErrIs: coordinator.ErrArithmetic,
		},
		{
			name:      "insufficient fee",
			balance:   100,
			amount:    60,
			fee:       9,
			wantErrIs: coordinator.ErrArithmetic,
		},
		{
			name:    "transport failure",
			balance: 100,
			amount:  60,
			fee:     10,
			sendErr: errors.New("transport down"),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			e := newEnv(t)
			e.transport.SendErr = test.sendErr

			require.NoError(e.token.Credit(alice, uint256.NewInt(test.balance)))

			_, err := e.c.Lock(context.Background(), alice, uint256.NewInt(test.amount), uint256.NewInt(test.fee))
			require.Error(err)
			if test.sendErr != nil {
				require.ErrorIs(err, test.sendErr)
			} else {
				require.ErrorIs(err, test.wantErrIs)
			}

			balance, err := e.token.BalanceOf(alice)
			require.NoError(err)
			require.Equal(uint256.NewInt(test.balance), balance)
			require.Empty(e.transport.Sent())
		})
	}
}

func TestLockWithoutCanonicalPeer(t *testing.T) {
	require := require.New(t)

	transport := &coordinator.FakeTransport{}
	token := ledger.NewToken("LUX", memdb.New())
	c, err := New(Config{
		ChainID:          chainID,
		Address:          self,
		CanonicalChainID: canonical,
		Channel:          channel,
		Transport:        transport,
		Token:            token,
		Authority:        coordinator.NewOwner(owner),
		DB:               memdb.New(),
	})
	require.NoError(err)
	require.NoError(token.Credit(alice, uint256.NewInt(1)))

	_, err = c.Lock(context.Background(), alice, uint256.NewInt(1), nil)
	require.ErrorIs(err, coordinator.ErrConfiguration)

	balance, err := token.BalanceOf(alice)
	require.NoError(err)
	require.Equal(uint256.NewInt(1), balance)
}

func TestQueueFees(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.NoError(e.reward.Credit(booster, uint256.NewInt(50)))

	_, err := e.c.QueueFees(context.Background(), alice, alice, uint256.NewInt(20), uint256.NewInt(10))
	require.ErrorIs(err, coordinator.ErrUnauthorizedCaller)
	require.Empty(e.transport.Sent())

	_, err = e.c.QueueFees(context.Background(), booster, alice, uint256.NewInt(20), uint256.NewInt(10))
	require.NoError(err)

	balance, err := e.reward.BalanceOf(delegate)
	require.NoError(err)
	require.Equal(uint256.NewInt(20), balance)

	sent := e.transport.Sent()
	require.Len(sent, 1)
	msg, err := payload.Parse(sent[0].Payload)
	require.NoError(err)
	require.Equal(&payload.QueueFees{OriginalSender: alice, RewardAmount: uint256.NewInt(20)}, msg)

	// queueing fees never touches the rate
	require.True(e.rate(t).IsZero())
}

func TestQueueFeesRestoresRewardOnSendFailure(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)
	e.transport.SendErr = errors.New("transport down")

	require.NoError(e.reward.Credit(booster, uint256.NewInt(50)))
	_, err := e.c.QueueFees(context.Background(), booster, alice, uint256.NewInt(20), uint256.NewInt(10))
	require.ErrorIs(err, e.transport.SendErr)

	balance, err := e.reward.BalanceOf(booster)
	require.NoError(err)
	require.Equal(uint256.NewInt(50), balance)
}

func TestConfigurationIsAuthorityGated(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	require.ErrorIs(e.c.SetBooster(stranger, stranger), coordinator.ErrUnauthorizedCaller)
	require.ErrorIs(e.c.SetBridgeDelegate(stranger, stranger), coordinator.ErrUnauthorizedCaller)
	require.ErrorIs(e.c.SetTrustedRemote(stranger, channel, canonical, stranger), coordinator.ErrUnauthorizedCaller)
	require.ErrorIs(e.c.SetBooster(owner, common.Address{}), coordinator.ErrConfiguration)

	got, ok, err := e.c.Booster()
	require.NoError(err)
	require.True(ok)
	require.Equal(booster, got)

	got, ok, err = e.c.BridgeDelegate()
	require.NoError(err)
	require.True(ok)
	require.Equal(delegate, got)
}

func TestEstimateFees(t *testing.T) {
	require := require.New(t)
	e := newEnv(t)

	fee, err := e.c.EstimateLockFee(context.Background(), alice, uint256.NewInt(1))
	require.NoError(err)
	require.Equal(uint256.NewInt(10), fee)

	fee, err = e.c.EstimateQueueFeesFee(context.Background(), alice, uint256.NewInt(1))
	require.NoError(err)
	require.Equal(uint256.NewInt(10), fee)
}
