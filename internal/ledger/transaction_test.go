package ledger

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func sampleTransaction() *Transaction {
	var prev [32]byte
	prev[0] = 0xaa
	return &Transaction{
		Version: 1,
		In: []TxIn{{
			PrevOut:         OutPoint{Hash: prev, Index: 0},
			SignatureScript: []byte{0x51},
			Sequence:        0xffffffff,
		}},
		Out: []TxOut{{
			Value:    5000,
			PkScript: []byte{0x6a},
		}},
		LockTime: 0,
	}
}

func TestSerializeKnownEncoding(t *testing.T) {
	want := "01000000" + // version
		"01" + // input count
		"aa" + strings.Repeat("00", 31) + // prevout hash
		"00000000" + // prevout index
		"0151" + // signature script
		"ffffffff" + // sequence
		"01" + // output count
		"8813000000000000" + // value 5000
		"016a" + // pk script
		"00000000" // lock time

	got := sampleTransaction().SerializeHex()
	if got != want {
		t.Fatalf("serialization mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	tx := sampleTransaction()
	parsed, err := Deserialize(tx.Serialize())
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !bytes.Equal(parsed.Serialize(), tx.Serialize()) {
		t.Fatalf("round trip changed encoding")
	}
	if parsed.TxIDString() != tx.TxIDString() {
		t.Fatalf("round trip changed txid")
	}
}

func TestDeserializeTruncated(t *testing.T) {
	raw := sampleTransaction().Serialize()
	for _, cut := range []int{1, 4, 10, len(raw) - 1} {
		if _, err := Deserialize(raw[:cut]); err == nil {
			t.Fatalf("expected error for %d-byte prefix", cut)
		}
	}
}

func TestDeserializeTrailingBytes(t *testing.T) {
	raw := append(sampleTransaction().Serialize(), 0x00)
	if _, err := Deserialize(raw); !errors.Is(err, ErrTrailing) {
		t.Fatalf("expected ErrTrailing, got %v", err)
	}
}

func TestDeserializeHexRejectsBadHex(t *testing.T) {
	if _, err := DeserializeHex("not-hex"); !errors.Is(err, ErrBadHex) {
		t.Fatalf("expected ErrBadHex, got %v", err)
	}
}

func TestCompactSizeBoundaries(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{0, "00"},
		{0xfc, "fc"},
		{0xfd, "fdfd00"},
		{0xffff, "fdffff"},
		{0x10000, "fe00000100"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		writeCompactSize(&buf, c.n)
		if got := hex.EncodeToString(buf.Bytes()); got != c.want {
			t.Fatalf("compact size %d: got %s want %s", c.n, got, c.want)
		}
		back, err := readCompactSize(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("read compact size %d: %v", c.n, err)
		}
		if back != c.n {
			t.Fatalf("compact size %d round-tripped to %d", c.n, back)
		}
	}
}

func TestHashStringRoundTrip(t *testing.T) {
	tx := sampleTransaction()
	display := tx.TxIDString()
	back, err := HashFromString(display)
	if err != nil {
		t.Fatalf("parse hash: %v", err)
	}
	if back != tx.TxID() {
		t.Fatalf("hash round trip mismatch")
	}
}

func TestHashFromStringRejectsWrongLength(t *testing.T) {
	if _, err := HashFromString("abcd"); err == nil {
		t.Fatal("expected error for short hash")
	}
}
