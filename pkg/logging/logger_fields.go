package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

// BuildID tags every line of one construction run
func BuildID(id string) Field {
	return String("build_id", id)
}

// Symbol renders a byte symbol as its numeric value
func Symbol(sym byte) Field {
	return Int("symbol", int(sym))
}

func Row(row uint64) Field {
	return Uint64("row", row)
}

func Position(pos uint64) Field {
	return Uint64("pos", pos)
}

func Runs(n uint64) Field {
	return Uint64("runs", n)
}

func Factors(n uint64) Field {
	return Uint64("factors", n)
}

func Bytes(n uint64) Field {
	return Uint64("bytes", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Path(p string) Field {
	return String("path", p)
}
