package library

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"agal/internal/numeric"
	"agal/internal/value"
)

// NewCripto builds the `:cripto` module (§4's DOMAIN STACK:
// `golang.org/x/crypto`, stdlib `crypto/sha256`/`crypto/rand`). Grounded
// on sentra's go.mod carrying golang.org/x/crypto for its own
// password-hashing path (internal/auth), retargeted here to the content
// hashing and random-byte primitives §4 names instead of bcrypt, since
// this spec has no user-account Non-goal carve-out.
func NewCripto() value.Value {
	m := value.NewMapObj()
	m.Set("hash_sha256", nativeFn("hash_sha256", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		text, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("hash_sha256", "una cadena")
		}
		sum := sha256.Sum256([]byte(text))
		return value.String(hex.EncodeToString(sum[:])), nil
	}))
	m.Set("hash_blake2b", nativeFn("hash_blake2b", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		text, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("hash_blake2b", "una cadena")
		}
		sum := blake2b.Sum256([]byte(text))
		return value.String(hex.EncodeToString(sum[:])), nil
	}))
	m.Set("aleatorio", nativeFn("aleatorio", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		n, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("aleatorio", "una cantidad de bytes")
		}
		count, ok := n.AsUsize()
		if !ok || count < 0 {
			return nil, errArg("aleatorio", "un entero no negativo")
		}
		buf := make([]byte, count)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		return value.String(hex.EncodeToString(buf)), nil
	}))
	m.Set("entero_aleatorio", nativeFn("entero_aleatorio", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		n, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("entero_aleatorio", "una cota superior")
		}
		bound, ok := n.AsUsize()
		if !ok || bound <= 0 {
			return nil, errArg("entero_aleatorio", "un entero positivo")
		}
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return nil, err
		}
		var v uint64
		for _, byt := range b {
			v = v<<8 | uint64(byt)
		}
		return numeric.FromInt64(int64(v % uint64(bound))), nil
	}))
	return m
}
