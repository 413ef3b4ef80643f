// Package genesis builds the initial ledger state: the master account
// holding the full lamport supply, plus the starting fee schedule.
package genesis

import (
	"github.com/solcards/gocardsd/internal/codec/addresscodec"
	"github.com/solcards/gocardsd/internal/core/lamport"
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
	ed25519provider "github.com/solcards/gocardsd/internal/crypto/algorithms/ed25519"
)

// MasterPassphrase seeds the well-known master keypair used for
// standalone networks and tests.
const MasterPassphrase = "masterpassphrase"

// Config describes the genesis ledger.
type Config struct {
	// MasterAddress receives the entire supply
	MasterAddress string

	// TotalSupply is the lamport supply created at genesis
	TotalSupply uint64

	// Fee schedule
	BaseFee          uint64
	ReserveBase      uint64
	ReserveIncrement uint64
}

// DefaultConfig returns the standalone-network genesis configuration.
func DefaultConfig() Config {
	return Config{
		MasterAddress:    MasterAddress(),
		TotalSupply:      500_000_000 * uint64(lamport.PerSOL),
		BaseFee:          5_000,
		ReserveBase:      uint64(lamport.PerSOL),      // 1 SOL
		ReserveIncrement: uint64(lamport.PerSOL) / 10, // 0.1 SOL
	}
}

// MasterKeypair derives the well-known master keypair.
func MasterKeypair() (private, public []byte, err error) {
	return ed25519provider.NewProvider().GenerateKeypair([]byte(MasterPassphrase))
}

// MasterAddress derives the address of the master account.
func MasterAddress() string {
	_, public, err := MasterKeypair()
	if err != nil {
		panic("genesis: master keypair derivation failed: " + err.Error())
	}
	return addresscodec.EncodePublicKey(public)
}

// Result holds the generated genesis state.
type Result struct {
	Config Config
	State  map[[32]byte][]byte
}

// Create builds the genesis state map.
func Create(cfg Config) (*Result, error) {
	master := sle.NewAccountRoot(cfg.MasterAddress, cfg.TotalSupply)
	data, err := sle.SerializeAccountRoot(master)
	if err != nil {
		return nil, err
	}

	masterID, err := sle.DecodeAccountID(cfg.MasterAddress)
	if err != nil {
		return nil, err
	}

	state := make(map[[32]byte][]byte)
	state[keylet.Account(masterID).Key] = data

	return &Result{Config: cfg, State: state}, nil
}
