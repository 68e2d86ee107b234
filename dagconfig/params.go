// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dagconfig defines the per-network Settings a full node is
// configured with: genesis vertices, address version bytes, weight floors,
// structural ceilings, and the subsidy schedule. Every subsystem constructor
// takes an explicit *Settings rather than reaching for package-level state,
// so that a process can in principle run more than one network at once.
package dagconfig

import (
	"math"

	"github.com/dagledger/fullnode/daa"
	"github.com/dagledger/fullnode/txscript"
)

// Settings mirrors the configuration surface spec.md §6 requires external
// callers to be able to supply. It plays the role the teacher's per-network
// Params struct played, generalized from "which Bitcoin chain" to "which
// DAG ledger network".
type Settings struct {
	NetworkName string

	// GenesisTimestamp, GenesisTokens and GenesisOutputScript parameterize
	// the three fixed genesis vertices built by Genesis().
	GenesisTimestamp    int64
	GenesisTokens       uint64
	GenesisOutputScript []byte

	P2PKHVersionByte     byte
	MultisigVersionByte  byte

	MinBlockWeight float64
	MinTxWeight    float64
	MinShareWeight float64

	BlocksPerHalving uint64
	InitialSubsidy   uint64

	MaxNumInputs             int
	MaxNumOutputs            int
	MaxOutputValue           uint64
	MaxDistanceBetweenBlocks int64

	StorageSubfolders     int
	TokenDepositPercentage float64
	MaxTxCount             int

	// MinTxWeightCoefficient and MinTxWeightK parameterize the dynamic
	// minimum-tx-weight formula of spec.md §4.7 step 7:
	//   min_tx_weight = MinTxWeightK * log2(total_value) + MinTxWeightCoefficient
	MinTxWeightK           float64
	MinTxWeightCoefficient float64

	// DAA selects the difficulty-adjustment algorithm used to compute the
	// next block's minimum weight.
	DAA daa.Algorithm
}

// UnittestSettings returns the network configuration used by tests and by
// default when no external configuration is supplied, grounded on
// hathor-core's conf/unittests.py.
func UnittestSettings() *Settings {
	return &Settings{
		NetworkName: "unittests",

		GenesisTimestamp:    1560920000,
		GenesisTokens:       2 << 33,
		GenesisOutputScript: txscript.P2PKHScript(make([]byte, 20)),

		P2PKHVersionByte:    0x28,
		MultisigVersionByte: 0x64,

		MinBlockWeight: 2,
		MinTxWeight:    2,
		MinShareWeight: 2,

		BlocksPerHalving: 2 * 60,
		InitialSubsidy:   64 * 100_000_000,

		MaxNumInputs:             255,
		MaxNumOutputs:            255,
		MaxOutputValue:           1 << 43,
		MaxDistanceBetweenBlocks: 30 * 60,

		StorageSubfolders:      256,
		TokenDepositPercentage: 0.01,
		MaxTxCount:             3,

		MinTxWeightK:           1.0,
		MinTxWeightCoefficient: 1.6,

		DAA: daa.NewHTR(),
	}
}

// MainnetSettings returns production network parameters. Values mirror
// UnittestSettings except for the identifiers that must differ per network;
// real deployments are expected to override individual fields.
func MainnetSettings() *Settings {
	s := UnittestSettings()
	s.NetworkName = "mainnet"
	s.MinBlockWeight = 21
	s.MinTxWeight = 14
	s.MinShareWeight = 21
	s.BlocksPerHalving = 2 * 60 * 60 * 24 * 365 / 30 // ~1 block per 30s, halving yearly
	s.DAA = daa.NewHTR()
	return s
}

// Subsidy implements the reward-halving schedule of spec.md §9:
// subsidy(height) = InitialSubsidy >> (height / BlocksPerHalving).
func (s *Settings) Subsidy(height uint64) uint64 {
	if s.BlocksPerHalving == 0 {
		return s.InitialSubsidy
	}
	halvings := height / s.BlocksPerHalving
	if halvings >= 64 {
		return 0
	}
	return s.InitialSubsidy >> halvings
}

// DynamicMinTxWeight computes the dynamic minimum weight for a transaction
// moving totalValue, floored at s.MinTxWeight.
func (s *Settings) DynamicMinTxWeight(totalValue uint64) float64 {
	if totalValue == 0 {
		return s.MinTxWeight
	}
	w := s.MinTxWeightK*math.Log2(float64(totalValue)) + s.MinTxWeightCoefficient
	if w < s.MinTxWeight {
		return s.MinTxWeight
	}
	return w
}
