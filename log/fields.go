package log

import "go.uber.org/zap"

var (
	String   = zap.String
	Int      = zap.Int
	Uint64   = zap.Uint64
	Duration = zap.Duration
)

func ErrorField(err error) Field {
	return zap.Error(err)
}
