package library

import (
	"time"

	"github.com/dustin/go-humanize"

	"agal/internal/numeric"
	"agal/internal/value"
)

// NewTmp builds the `:tmp` module (§4's DOMAIN STACK: go-humanize for
// `formatea`). `ahora` returns nanoseconds since epoch, `ZONA` the local
// UTC offset in seconds, and `formatea` renders a millisecond duration
// as a human string ("3 days", "2 hours") the way go-humanize's
// RelTime/time helpers do for sentra's own log timestamps.
func NewTmp() value.Value {
	m := value.NewMapObj()
	m.Set("ahora", nativeFn("ahora", 0, func(_ value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		return numeric.FromInt64(time.Now().UnixNano()), nil
	}))
	_, offset := time.Now().Zone()
	m.Set("ZONA", numeric.FromInt64(int64(offset)))
	m.Set("formatea", nativeFn("formatea", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		n, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("formatea", "milisegundos")
		}
		ms, ok := n.AsUsize()
		if !ok {
			return nil, errArg("formatea", "un entero no negativo de milisegundos")
		}
		return value.String(humanize.RelTime(time.Now().Add(-time.Duration(ms)*time.Millisecond), time.Now(), "", "")), nil
	}))
	return m
}
