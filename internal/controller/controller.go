// Package controller registers the built-in client operations that work
// without a live bitcoind node: transaction decoding, the local transaction
// cache and wallet conveniences. Operations that build or query colored-coin
// transactions against a node are provided by external operation providers
// through the same registry.
package controller

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"

	"github.com/tyler-smith/go-bip39"

	"colorcore/go-daemon/internal/cache"
	"colorcore/go-daemon/internal/ledger"
	"colorcore/go-daemon/internal/operations"
)

// Register adds the built-in operations to the registry.
func Register(reg *operations.Registry) {
	reg.Register(operations.Descriptor{
		Name: "decoderawtransaction",
		Doc:  "Decodes a hex-encoded transaction.",
		Params: []operations.ParamSpec{
			{Name: "rawtx", Required: true, Description: "The hex-encoded transaction to decode"},
		},
	}, decodeRawTransaction)

	reg.Register(operations.Descriptor{
		Name: "storerawtransaction",
		Doc:  "Stores a hex-encoded transaction in the local cache and returns its txid.",
		Params: []operations.ParamSpec{
			{Name: "rawtx", Required: true, Description: "The hex-encoded transaction to store"},
		},
	}, storeRawTransaction)

	reg.Register(operations.Descriptor{
		Name: "getrawtransaction",
		Doc:  "Returns a transaction from the local cache.",
		Params: []operations.ParamSpec{
			{Name: "txid", Required: true, Description: "The transaction id to look up"},
		},
	}, getRawTransaction)

	reg.Register(operations.Descriptor{
		Name: "validateaddress",
		Doc:  "Validates a base58check address and returns its components.",
		Params: []operations.ParamSpec{
			{Name: "address", Required: true, Description: "The address to validate"},
		},
	}, validateAddress)

	reg.Register(operations.Descriptor{
		Name: "newmnemonic",
		Doc:  "Generates a new BIP-39 wallet mnemonic.",
		Params: []operations.ParamSpec{
			{Name: "strength", Default: "128", Description: "Entropy strength in bits (128-256, multiple of 32)"},
		},
	}, newMnemonic)
}

func decodeRawTransaction(ctx context.Context, op *operations.Context, args operations.Args) (any, error) {
	tx, err := ledger.DeserializeHex(args["rawtx"])
	if err != nil {
		return nil, operations.Errorf("invalid transaction: %v", err)
	}
	return tx, nil
}

func storeRawTransaction(ctx context.Context, op *operations.Context, args operations.Args) (any, error) {
	tx, err := ledger.DeserializeHex(args["rawtx"])
	if err != nil {
		return nil, operations.Errorf("invalid transaction: %v", err)
	}
	for _, out := range tx.Out {
		if out.Value < op.Config.Environment.DustLimit {
			return nil, &operations.TransactionBuilderError{Kind: operations.DustOutput}
		}
	}

	c, err := op.NewCache()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	txid := tx.TxID()
	if err := c.PutTransaction(ctx, txid, tx.Serialize()); err != nil {
		return nil, err
	}
	return map[string]any{"txid": tx.TxIDString()}, nil
}

func getRawTransaction(ctx context.Context, op *operations.Context, args operations.Args) (any, error) {
	txid, err := ledger.HashFromString(args["txid"])
	if err != nil {
		return nil, operations.Errorf("invalid txid: %v", err)
	}

	c, err := op.NewCache()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	raw, err := c.GetTransaction(ctx, txid)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, operations.Errorf("transaction %s is not in the local cache", args["txid"])
	}
	if err != nil {
		return nil, err
	}
	tx, err := ledger.Deserialize(raw)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func validateAddress(ctx context.Context, op *operations.Context, args operations.Args) (any, error) {
	addr, err := ledger.DecodeAddress(args["address"])
	if err != nil {
		return map[string]any{"isvalid": false}, nil
	}
	env := op.Config.Environment
	return map[string]any{
		"isvalid":  true,
		"address":  args["address"],
		"version":  int(addr.Version),
		"hash160":  hex.EncodeToString(addr.Hash[:]),
		"isscript": addr.Version == env.P2SHVersionByte,
	}, nil
}

func newMnemonic(ctx context.Context, op *operations.Context, args operations.Args) (any, error) {
	strength, err := strconv.Atoi(args["strength"])
	if err != nil || strength < 128 || strength > 256 || strength%32 != 0 {
		return nil, operations.Errorf("strength must be a multiple of 32 between 128 and 256")
	}
	entropy, err := bip39.NewEntropy(strength)
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"mnemonic": mnemonic,
		"strength": strength,
	}, nil
}
