package core

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Clock supplies the current unix time in seconds. Injected so tests can
// drive wall-clock comparisons (expiry, grace periods) deterministically.
type Clock func() int64

// attKey identifies one (event, wallet) pair across the attendance, rating
// and NFT registries.
type attKey struct {
	Event  uint64
	Wallet common.Address
}

// Config tunes a State. Zero values fall back to real time and a 7 day
// emergency-withdraw grace period.
type Config struct {
	Clock       Clock
	GracePeriod time.Duration
}

// State owns every registry in the protocol: events, attendance records,
// escrows, airdrops, ratings and completion NFTs. All access goes through
// exported methods; each method takes the single lock, re-checks its
// preconditions against current state and either fully applies or returns
// an *Abort with nothing mutated.
type State struct {
	mu    sync.Mutex
	clock Clock
	grace int64 // seconds past event end before emergency withdraw opens

	eventSeq uint64
	passSeq  uint64

	events     map[uint64]*Event
	attendance map[attKey]*AttendanceRecord
	ratings    map[attKey]uint64
	nfts       map[attKey]bool
	capsUsed   map[attKey]bool
	escrows    map[uint64]*Escrow
	airdrops   map[uuid.UUID]*Airdrop
}

const defaultGracePeriod = 7 * 24 * time.Hour

// NewState builds an empty protocol state.
func NewState(cfg Config) *State {
	clock := cfg.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}
	grace := cfg.GracePeriod
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	return &State{
		clock:      clock,
		grace:      int64(grace / time.Second),
		events:     make(map[uint64]*Event),
		attendance: make(map[attKey]*AttendanceRecord),
		ratings:    make(map[attKey]uint64),
		nfts:       make(map[attKey]bool),
		capsUsed:   make(map[attKey]bool),
		escrows:    make(map[uint64]*Escrow),
		airdrops:   make(map[uuid.UUID]*Airdrop),
	}
}

func (s *State) now() int64 { return s.clock() }
