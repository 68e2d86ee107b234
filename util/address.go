// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"errors"

	"github.com/dagledger/fullnode/util/base58"
	"golang.org/x/crypto/ripemd160"
)

var (
	// ErrChecksumMismatch describes an error where decoding failed due
	// to a bad checksum.
	ErrChecksumMismatch = base58.ErrChecksumMismatch

	// ErrUnknownAddressType describes an error where an address's version
	// byte does not match either the configured P2PKH or multisig byte.
	ErrUnknownAddressType = errors.New("unknown address type")
)

// Address is a pay-to-pubkey-hash or pay-to-multisig-hash destination,
// encoded per spec.md §6: base58(version_byte ‖ hash160(payload) ‖
// checksum_4bytes). The version byte is network-dependent and distinguishes
// the two address kinds.
type Address struct {
	hash    [ripemd160.Size]byte
	version byte
}

// NewAddressPubKeyHash returns a P2PKH address for a given 20-byte hash160,
// tagged with the network's configured P2PKH version byte.
func NewAddressPubKeyHash(pkHash []byte, p2pkhVersion byte) (*Address, error) {
	return newAddress(pkHash, p2pkhVersion)
}

// NewAddressScriptHash returns a multisig-hash address for a given 20-byte
// hash160, tagged with the network's configured multisig version byte.
func NewAddressScriptHash(scriptHash []byte, multisigVersion byte) (*Address, error) {
	return newAddress(scriptHash, multisigVersion)
}

func newAddress(hash []byte, version byte) (*Address, error) {
	if len(hash) != ripemd160.Size {
		return nil, errors.New("hash must be 20 bytes")
	}
	a := &Address{version: version}
	copy(a.hash[:], hash)
	return a, nil
}

// EncodeAddress returns the Base58Check string encoding of the address.
func (a *Address) EncodeAddress() string {
	return base58.CheckEncode(a.hash[:], a.version)
}

// String is equivalent to EncodeAddress; it lets Address satisfy fmt.Stringer.
func (a *Address) String() string {
	return a.EncodeAddress()
}

// ScriptAddress returns the raw 20-byte hash160 payload of the address.
func (a *Address) ScriptAddress() []byte {
	return a.hash[:]
}

// Version returns the address's version byte.
func (a *Address) Version() byte {
	return a.version
}

// Hash160 returns the underlying hash160 as a fixed-size array.
func (a *Address) Hash160() *[ripemd160.Size]byte {
	return &a.hash
}

// DecodeAddress parses a Base58Check-encoded address string, verifying that
// its version byte matches either p2pkhVersion or multisigVersion.
func DecodeAddress(addr string, p2pkhVersion, multisigVersion byte) (*Address, error) {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return nil, err
	}
	if len(payload) != ripemd160.Size {
		return nil, errors.New("decoded address is of unknown size")
	}
	if version != p2pkhVersion && version != multisigVersion {
		return nil, ErrUnknownAddressType
	}
	return newAddress(payload, version)
}
