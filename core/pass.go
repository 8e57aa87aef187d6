package core

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// The pass commitment binds (pass_id, event_id, wallet) into one keccak256
// hash. The verifier never trusts a client-supplied hash: it recomputes the
// commitment from the claimed inputs and the registration record and
// requires bit-for-bit equality. The serialization below is the canonical
// wire format; any change to field order, width or endianness changes every
// commitment in circulation.

// CommitmentSize is the keccak256 digest length in bytes.
const CommitmentSize = 32

// passPreimage lays out the canonical bytes:
// LE64(pass_id) || LE64(event_id) || wallet (20 raw bytes).
func passPreimage(passID, eventID uint64, wallet common.Address) []byte {
	buf := make([]byte, 16+common.AddressLength)
	binary.LittleEndian.PutUint64(buf[0:8], passID)
	binary.LittleEndian.PutUint64(buf[8:16], eventID)
	copy(buf[16:], wallet.Bytes())
	return buf
}

// PassCommitment computes the canonical commitment for a registration.
func PassCommitment(passID, eventID uint64, wallet common.Address) []byte {
	return crypto.Keccak256(passPreimage(passID, eventID, wallet))
}

// IssuedPass is what registration hands back to the client, to be encoded
// into a scannable code. The commitment is not a secret; possession of it
// proves nothing without inputs that recompute to the same bytes.
type IssuedPass struct {
	PassID     uint64         `json:"pass_id"`
	EventID    uint64         `json:"event_id"`
	Wallet     common.Address `json:"wallet"`
	Commitment []byte         `json:"commitment"`
	IssuedAt   int64          `json:"issued_at"`
}

// verifyClaimLocked checks a presented pass claim against the registration
// record. For compact claims the (pass_id, event_id, wallet) triple must
// recompute to the commitment the chain derives from the record. For legacy
// claims the presented hash bytes must equal that recomputation. Fails
// closed on any divergence.
func verifyClaimLocked(rec *AttendanceRecord, claim PassClaim) error {
	expected := PassCommitment(rec.PassID, rec.EventID, rec.Wallet)

	if claim.PresentedHash != nil {
		if !bytes.Equal(claim.PresentedHash, expected) {
			return abortf(CodeInvalidCapability, "presented pass hash does not match registration")
		}
		if claim.Wallet != rec.Wallet || claim.EventID != rec.EventID {
			return abortf(CodeInvalidCapability, "pass claim identity mismatch")
		}
		return nil
	}

	got := PassCommitment(claim.PassID, claim.EventID, claim.Wallet)
	if !bytes.Equal(got, expected) {
		return abortf(CodeInvalidCapability, "pass commitment mismatch for event %d", rec.EventID)
	}
	return nil
}
