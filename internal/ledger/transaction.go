// Package ledger holds the minimal ledger object model the daemon needs:
// transactions in canonical wire encoding, txid computation and base58check
// addresses. It deliberately stops short of script evaluation or signing,
// which belong to the operation providers.
package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Wire-format limits. A transaction claiming more entries than this is
// rejected before any allocation happens.
const (
	maxTxInputs  = 100_000
	maxTxOutputs = 100_000
	maxScriptLen = 10_000
)

var (
	ErrTruncated  = errors.New("ledger: truncated transaction")
	ErrOversized  = errors.New("ledger: transaction field exceeds limit")
	ErrTrailing   = errors.New("ledger: trailing bytes after transaction")
	ErrBadHex     = errors.New("ledger: invalid transaction hex")
)

// OutPoint references a previous transaction output.
// Hash is kept in internal byte order; use HashString for display.
type OutPoint struct {
	Hash  [32]byte
	Index uint32
}

// HashString renders the referenced txid in display order (reversed hex).
func (o OutPoint) HashString() string {
	return hashToString(o.Hash)
}

type TxIn struct {
	PrevOut         OutPoint
	SignatureScript []byte
	Sequence        uint32
}

type TxOut struct {
	Value    int64
	PkScript []byte
}

// Transaction is the canonical ledger transaction. The zero value is a valid
// empty transaction; fields are plain data and the type carries no methods
// with side effects, so values can be shared read-only across goroutines.
type Transaction struct {
	Version  int32
	In       []TxIn
	Out      []TxOut
	LockTime uint32
}

// Serialize renders the transaction in canonical wire encoding:
// little-endian integers, compact-size prefixed scripts.
func (t *Transaction) Serialize() []byte {
	var buf bytes.Buffer
	var scratch [8]byte

	binary.LittleEndian.PutUint32(scratch[:4], uint32(t.Version))
	buf.Write(scratch[:4])

	writeCompactSize(&buf, uint64(len(t.In)))
	for i := range t.In {
		in := &t.In[i]
		buf.Write(in.PrevOut.Hash[:])
		binary.LittleEndian.PutUint32(scratch[:4], in.PrevOut.Index)
		buf.Write(scratch[:4])
		writeCompactSize(&buf, uint64(len(in.SignatureScript)))
		buf.Write(in.SignatureScript)
		binary.LittleEndian.PutUint32(scratch[:4], in.Sequence)
		buf.Write(scratch[:4])
	}

	writeCompactSize(&buf, uint64(len(t.Out)))
	for i := range t.Out {
		out := &t.Out[i]
		binary.LittleEndian.PutUint64(scratch[:8], uint64(out.Value))
		buf.Write(scratch[:8])
		writeCompactSize(&buf, uint64(len(out.PkScript)))
		buf.Write(out.PkScript)
	}

	binary.LittleEndian.PutUint32(scratch[:4], t.LockTime)
	buf.Write(scratch[:4])
	return buf.Bytes()
}

// SerializeHex renders the canonical encoding as lowercase hex text.
func (t *Transaction) SerializeHex() string {
	return hex.EncodeToString(t.Serialize())
}

// TxID computes the double-SHA256 of the canonical encoding, in internal
// byte order.
func (t *Transaction) TxID() [32]byte {
	first := sha256.Sum256(t.Serialize())
	return sha256.Sum256(first[:])
}

// TxIDString renders the txid in display order.
func (t *Transaction) TxIDString() string {
	return hashToString(t.TxID())
}

// Deserialize parses a transaction from its canonical wire encoding.
// The input must contain exactly one transaction; trailing bytes are an
// error so that a txid computed from the input matches the parsed value.
func Deserialize(raw []byte) (*Transaction, error) {
	r := bytes.NewReader(raw)
	tx, err := readTransaction(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, ErrTrailing
	}
	return tx, nil
}

// DeserializeHex parses a transaction from hex text.
func DeserializeHex(s string) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHex, err)
	}
	return Deserialize(raw)
}

func readTransaction(r *bytes.Reader) (*Transaction, error) {
	var tx Transaction

	version, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	tx.Version = int32(version)

	inCount, err := readCompactSize(r)
	if err != nil {
		return nil, err
	}
	if inCount > maxTxInputs {
		return nil, ErrOversized
	}
	tx.In = make([]TxIn, inCount)
	for i := range tx.In {
		in := &tx.In[i]
		if _, err := io.ReadFull(r, in.PrevOut.Hash[:]); err != nil {
			return nil, ErrTruncated
		}
		if in.PrevOut.Index, err = readUint32(r); err != nil {
			return nil, err
		}
		if in.SignatureScript, err = readVarBytes(r); err != nil {
			return nil, err
		}
		if in.Sequence, err = readUint32(r); err != nil {
			return nil, err
		}
	}

	outCount, err := readCompactSize(r)
	if err != nil {
		return nil, err
	}
	if outCount > maxTxOutputs {
		return nil, ErrOversized
	}
	tx.Out = make([]TxOut, outCount)
	for i := range tx.Out {
		out := &tx.Out[i]
		value, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		out.Value = int64(value)
		if out.PkScript, err = readVarBytes(r); err != nil {
			return nil, err
		}
	}

	if tx.LockTime, err = readUint32(r); err != nil {
		return nil, err
	}
	return &tx, nil
}

func writeCompactSize(buf *bytes.Buffer, n uint64) {
	var scratch [9]byte
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		scratch[0] = 0xfd
		binary.LittleEndian.PutUint16(scratch[1:3], uint16(n))
		buf.Write(scratch[:3])
	case n <= 0xffffffff:
		scratch[0] = 0xfe
		binary.LittleEndian.PutUint32(scratch[1:5], uint32(n))
		buf.Write(scratch[:5])
	default:
		scratch[0] = 0xff
		binary.LittleEndian.PutUint64(scratch[1:9], n)
		buf.Write(scratch[:9])
	}
}

func readCompactSize(r *bytes.Reader) (uint64, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return 0, ErrTruncated
	}
	switch prefix {
	case 0xfd:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, ErrTruncated
		}
		return uint64(binary.LittleEndian.Uint16(b[:])), nil
	case 0xfe:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, ErrTruncated
		}
		return uint64(binary.LittleEndian.Uint32(b[:])), nil
	case 0xff:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, ErrTruncated
		}
		return binary.LittleEndian.Uint64(b[:]), nil
	default:
		return uint64(prefix), nil
	}
}

func readVarBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readCompactSize(r)
	if err != nil {
		return nil, err
	}
	if n > maxScriptLen {
		return nil, ErrOversized
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, ErrTruncated
	}
	return b, nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// hashToString renders a 32-byte hash in display order, which is the byte
// reversal of the internal order.
func hashToString(h [32]byte) string {
	var reversed [32]byte
	for i := range h {
		reversed[31-i] = h[i]
	}
	return hex.EncodeToString(reversed[:])
}

// HashFromString parses a display-order txid back into internal byte order.
func HashFromString(s string) ([32]byte, error) {
	var h [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("ledger: invalid hash hex: %w", err)
	}
	if len(raw) != 32 {
		return h, fmt.Errorf("ledger: hash must be 32 bytes, got %d", len(raw))
	}
	for i, b := range raw {
		h[31-i] = b
	}
	return h, nil
}
