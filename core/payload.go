package core

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// Two scannable-code schemas are in circulation. The compact form carries
// the raw inputs and the verifier recomputes the commitment; the legacy
// form carries a base64 pass hash that is compared against the
// recomputation. Client timestamps in both forms are advisory and play no
// part in validity decisions.

// CompactPassPayload is the current QR schema.
type CompactPassPayload struct {
	EventID   uint64 `json:"e"`
	PassID    uint64 `json:"p"`
	Wallet    string `json:"u"`
	Timestamp int64  `json:"t"`
	Ref       string `json:"ref"`
}

// LegacyPassPayload is the schema older clients still present.
type LegacyPassPayload struct {
	EventID      uint64 `json:"event_id"`
	UserAddress  string `json:"user_address"`
	PassHash     string `json:"pass_hash"`
	RegisteredAt int64  `json:"registered_at"`
	Timestamp    int64  `json:"timestamp"`
}

// PassClaim is the schema-independent result of decoding a payload.
// PresentedHash is nil for compact claims, which instead carry the PassID
// to recompute from.
type PassClaim struct {
	EventID       uint64
	PassID        uint64
	Wallet        common.Address
	PresentedHash []byte
}

// CompactPayload renders an issued pass into the compact QR schema.
func (p *IssuedPass) CompactPayload(ref string) CompactPassPayload {
	return CompactPassPayload{
		EventID:   p.EventID,
		PassID:    p.PassID,
		Wallet:    p.Wallet.Hex(),
		Timestamp: p.IssuedAt,
		Ref:       ref,
	}
}

// CommitmentHex returns the commitment as a 0x-prefixed hex string.
func (p *IssuedPass) CommitmentHex() string {
	return "0x" + hex.EncodeToString(p.Commitment)
}

// DecodePassPayload accepts either schema and normalizes it into a
// PassClaim. The legacy form is detected by the presence of pass_hash.
func DecodePassPayload(raw []byte) (PassClaim, error) {
	var probe struct {
		PassHash string `json:"pass_hash"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return PassClaim{}, abortf(CodeInvalidCapability, "malformed pass payload: %v", err)
	}

	if probe.PassHash != "" {
		var legacy LegacyPassPayload
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return PassClaim{}, abortf(CodeInvalidCapability, "malformed legacy pass payload: %v", err)
		}
		if !common.IsHexAddress(legacy.UserAddress) {
			return PassClaim{}, abortf(CodeInvalidCapability, "invalid wallet address in pass payload")
		}
		hash, err := base64.StdEncoding.DecodeString(legacy.PassHash)
		if err != nil {
			return PassClaim{}, abortf(CodeInvalidCapability, "pass hash is not valid base64")
		}
		if len(hash) != CommitmentSize {
			return PassClaim{}, abortf(CodeInvalidCapability, "pass hash has wrong length %d", len(hash))
		}
		return PassClaim{
			EventID:       legacy.EventID,
			Wallet:        common.HexToAddress(legacy.UserAddress),
			PresentedHash: hash,
		}, nil
	}

	var compact CompactPassPayload
	if err := json.Unmarshal(raw, &compact); err != nil {
		return PassClaim{}, abortf(CodeInvalidCapability, "malformed compact pass payload: %v", err)
	}
	if !common.IsHexAddress(compact.Wallet) {
		return PassClaim{}, abortf(CodeInvalidCapability, "invalid wallet address in pass payload")
	}
	return PassClaim{
		EventID: compact.EventID,
		PassID:  compact.PassID,
		Wallet:  common.HexToAddress(compact.Wallet),
	}, nil
}
