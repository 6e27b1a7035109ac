// Package txformat selects the per-request rendering strategy for operation
// results that carry a ledger transaction.
package txformat

import (
	"encoding/hex"

	"colorcore/go-daemon/internal/ledger"
)

// ParamKey is the reserved parameter name both front ends consume before
// forwarding arguments to an operation.
const ParamKey = "txformat"

const (
	FormatJSON = "json"
	FormatRaw  = "raw"
)

// Formatter converts an operation result into a JSON-serializable value.
// Values that are not ledger transactions pass through unchanged.
type Formatter func(v any) any

// Select returns the formatter for the requested format string. "json"
// expands a transaction into a structured object; any other value renders
// the canonical hex serialization. Unknown strings deliberately fall back
// to raw, which callers rely on.
func Select(format string) Formatter {
	if format == FormatJSON {
		return renderJSON
	}
	return renderRaw
}

func renderJSON(v any) any {
	tx, ok := v.(*ledger.Transaction)
	if !ok {
		return v
	}

	vin := make([]any, len(tx.In))
	for i, in := range tx.In {
		vin[i] = map[string]any{
			"txid":     in.PrevOut.HashString(),
			"vout":     in.PrevOut.Index,
			"sequence": in.Sequence,
			"scriptSig": map[string]any{
				"hex": hex.EncodeToString(in.SignatureScript),
			},
		}
	}

	vout := make([]any, len(tx.Out))
	for i, out := range tx.Out {
		vout[i] = map[string]any{
			"value": out.Value,
			"n":     i,
			"scriptPubKey": map[string]any{
				"hex": hex.EncodeToString(out.PkScript),
			},
		}
	}

	return map[string]any{
		"version":  tx.Version,
		"locktime": tx.LockTime,
		"vin":      vin,
		"vout":     vout,
	}
}

func renderRaw(v any) any {
	if tx, ok := v.(*ledger.Transaction); ok {
		return tx.SerializeHex()
	}
	return v
}
