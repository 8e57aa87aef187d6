package core

import "github.com/ethereum/go-ethereum/common"

// NFTOracle answers whether a wallet holds the completion credential for an
// event. The in-memory registry implements it; contracts.PoAContract offers
// an on-chain backed implementation for indexer backfills.
type NFTOracle interface {
	HasCompletionNFT(eventID uint64, wallet common.Address) bool
}

// MintPoA consumes a check-in capability exactly once and records the PoA
// credential for its (event, wallet) pair. A second consumption of the same
// capability aborts with CodeInvalidCapability.
func (s *State) MintPoA(cap *MintCapability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cap == nil {
		return abortf(CodeInvalidCapability, "nil mint capability")
	}
	key := attKey{Event: cap.EventID, Wallet: cap.Wallet}
	rec, ok := s.attendance[key]
	if !ok {
		return abortf(CodeNotRegistered, "no attendance record behind capability")
	}
	if rec.State == AttendanceRegistered {
		return abortf(CodeInvalidCapability, "capability predates a valid check-in")
	}
	if s.capsUsed[key] {
		return abortf(CodeInvalidCapability, "mint capability for event %d already consumed", cap.EventID)
	}
	s.capsUsed[key] = true
	s.nfts[key] = true
	return nil
}

// RecordChainMint mirrors an on-chain PoA mint into the registry. Used by
// the indexer path when the credential lives in an external ERC-721
// collection; it still requires a checked-in attendance record.
func (s *State) RecordChainMint(eventID uint64, wallet common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attKey{Event: eventID, Wallet: wallet}
	rec, ok := s.attendance[key]
	if !ok {
		return abortf(CodeNotRegistered, "wallet %s never registered for event %d", wallet.Hex(), eventID)
	}
	if rec.State == AttendanceRegistered {
		return abortf(CodeInvalidState, "wallet %s has not checked in to event %d", wallet.Hex(), eventID)
	}
	s.nfts[key] = true
	return nil
}

// HasCompletionNFT implements NFTOracle against the local registry.
func (s *State) HasCompletionNFT(eventID uint64, wallet common.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nfts[attKey{Event: eventID, Wallet: wallet}]
}
