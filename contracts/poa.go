package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// PoAContract wraps an on-chain ERC-721 proof-of-attendance collection.
// The verification core never calls the chain inside a transaction; this
// wrapper serves the indexer path that mirrors on-chain mints into the
// local NFT registry.
type PoAContract struct {
	client  *ethclient.Client
	address common.Address
	abi     abi.ABI
}

// NewPoAContract creates a wrapper for the collection at address.
func NewPoAContract(client *ethclient.Client, address string) (*PoAContract, error) {
	// ERC-721 ABI - only the functions we need
	poaABI := `[{"inputs":[{"internalType":"address","name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

	parsedABI, err := abi.JSON(strings.NewReader(poaABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PoA ABI: %w", err)
	}

	return &PoAContract{
		client:  client,
		address: common.HexToAddress(address),
		abi:     parsedABI,
	}, nil
}

// BalanceOf calls balanceOf(owner) on the collection.
func (pc *PoAContract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	callData, err := pc.abi.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to pack call data: %w", err)
	}

	result, err := pc.client.CallContract(ctx, ethereum.CallMsg{
		To:   &pc.address,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf: %w", err)
	}

	var balance *big.Int
	err = pc.abi.UnpackIntoInterface(&balance, "balanceOf", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}

	return balance, nil
}

// HasToken reports whether owner holds at least one credential in the
// collection.
func (pc *PoAContract) HasToken(ctx context.Context, owner common.Address) (bool, error) {
	balance, err := pc.BalanceOf(ctx, owner)
	if err != nil {
		return false, err
	}
	return balance.Sign() > 0, nil
}
