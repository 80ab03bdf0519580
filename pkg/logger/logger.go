package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// Init builds the process logger. "production" gets JSON output at info level,
// anything else the development console encoder at debug level.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewExample()
	}

	mu.Lock()
	log = z.Sugar()
	mu.Unlock()
}

func Sync() {
	_ = current().Sync()
}

func Debug(msg string, keysAndValues ...any) {
	current().Debugw(msg, normalize(keysAndValues)...)
}

func Info(msg string, keysAndValues ...any) {
	current().Infow(msg, normalize(keysAndValues)...)
}

func Warn(msg string, keysAndValues ...any) {
	current().Warnw(msg, normalize(keysAndValues)...)
}

func Error(msg string, keysAndValues ...any) {
	current().Errorw(msg, normalize(keysAndValues)...)
}

func Fatal(msg string, keysAndValues ...any) {
	current().Fatalw(msg, normalize(keysAndValues)...)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// normalize turns call sites like logger.Error("msg", err) into proper pairs:
// a non-string in key position is logged under "error" or "arg<N>".
func normalize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv)+2)
	for i := 0; i < len(kv); i++ {
		key, ok := kv[i].(string)
		if ok && i+1 < len(kv) {
			out = append(out, key, kv[i+1])
			i++
			continue
		}
		if err, isErr := kv[i].(error); isErr {
			out = append(out, "error", err.Error())
			continue
		}
		out = append(out, fmt.Sprintf("arg%d", i), kv[i])
	}
	return out
}
