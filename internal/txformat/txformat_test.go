package txformat

import (
	"reflect"
	"strings"
	"testing"

	"colorcore/go-daemon/internal/ledger"
)

func formatterTransaction() *ledger.Transaction {
	var prev [32]byte
	prev[31] = 0x01
	return &ledger.Transaction{
		Version: 2,
		In: []ledger.TxIn{{
			PrevOut:         ledger.OutPoint{Hash: prev, Index: 3},
			SignatureScript: []byte{0xab, 0xcd},
			Sequence:        0xfffffffe,
		}},
		Out: []ledger.TxOut{{
			Value:    1500,
			PkScript: []byte{0x76, 0xa9},
		}},
		LockTime: 42,
	}
}

func TestSelectJSONExpandsTransaction(t *testing.T) {
	tx := formatterTransaction()
	rendered, ok := Select(FormatJSON)(tx).(map[string]any)
	if !ok {
		t.Fatalf("expected map rendering, got %T", Select(FormatJSON)(tx))
	}

	if rendered["version"] != int32(2) || rendered["locktime"] != uint32(42) {
		t.Fatalf("unexpected header fields: %v", rendered)
	}

	vin := rendered["vin"].([]any)
	in0 := vin[0].(map[string]any)
	wantTxid := "01" + strings.Repeat("00", 31)
	if in0["txid"] != wantTxid {
		t.Fatalf("vin[0].txid: got %v want %s", in0["txid"], wantTxid)
	}
	if in0["vout"] != uint32(3) || in0["sequence"] != uint32(0xfffffffe) {
		t.Fatalf("unexpected vin fields: %v", in0)
	}
	if sig := in0["scriptSig"].(map[string]any); sig["hex"] != "abcd" {
		t.Fatalf("vin[0].scriptSig.hex: got %v", sig["hex"])
	}

	vout := rendered["vout"].([]any)
	out0 := vout[0].(map[string]any)
	if out0["value"] != int64(1500) || out0["n"] != 0 {
		t.Fatalf("unexpected vout fields: %v", out0)
	}
	if pk := out0["scriptPubKey"].(map[string]any); pk["hex"] != "76a9" {
		t.Fatalf("vout[0].scriptPubKey.hex: got %v", pk["hex"])
	}
}

func TestSelectRawRendersCanonicalHex(t *testing.T) {
	tx := formatterTransaction()
	got := Select(FormatRaw)(tx)
	if got != tx.SerializeHex() {
		t.Fatalf("raw rendering: got %v want %s", got, tx.SerializeHex())
	}
}

func TestSelectUnknownFormatBehavesAsRaw(t *testing.T) {
	tx := formatterTransaction()
	if got := Select("yaml")(tx); got != tx.SerializeHex() {
		t.Fatalf("unknown format should render raw, got %v", got)
	}
}

func TestNonTransactionValuesPassThrough(t *testing.T) {
	values := []any{
		42,
		"hello",
		map[string]any{"balance": int64(7)},
	}
	for _, format := range []string{FormatJSON, FormatRaw, "anything-else"} {
		for _, v := range values {
			if got := Select(format)(v); !reflect.DeepEqual(got, v) {
				t.Fatalf("format %q changed %v to %v", format, v, got)
			}
		}
	}
}
