package ledger

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

var (
	ErrBadChecksum   = errors.New("ledger: address checksum mismatch")
	ErrBadAddressLen = errors.New("ledger: address payload has wrong length")
)

// Address is a decoded base58check address: one version byte followed by a
// 20-byte hash160 payload.
type Address struct {
	Version byte
	Hash    [20]byte
}

// Hash160 computes RIPEMD-160 over SHA-256, the hash used for P2PKH
// address payloads.
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// EncodeAddress renders the address in base58check form.
func EncodeAddress(version byte, hash [20]byte) string {
	payload := make([]byte, 0, 25)
	payload = append(payload, version)
	payload = append(payload, hash[:]...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

// DecodeAddress parses and checksum-validates a base58check address.
func DecodeAddress(s string) (Address, error) {
	var addr Address
	payload, err := base58.Decode(s)
	if err != nil {
		return addr, fmt.Errorf("ledger: invalid base58 address: %w", err)
	}
	if len(payload) != 25 {
		return addr, ErrBadAddressLen
	}
	body, check := payload[:21], payload[21:]
	if !bytes.Equal(check, checksum(body)) {
		return addr, ErrBadChecksum
	}
	addr.Version = body[0]
	copy(addr.Hash[:], body[1:])
	return addr, nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}
