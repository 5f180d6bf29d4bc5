// Package nativelog builds the process logger: console output plus a daily
// log file under the configured directory.
package nativelog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogDir          = "PORTFOLIO_LOG_DIR"
	defaultLogFilePerm = 0o644
	defaultLogDirPerm  = 0o755
)

// Options controls NewZapLogger.
type Options struct {
	// Dir overrides the log directory. Empty means ResolveDir.
	Dir string
	// Debug lowers the level to debug and uses a colored console encoder.
	Debug bool
}

// ResolveDir resolves the log directory: $PORTFOLIO_LOG_DIR, then the first
// existing candidate, then ./logs.
func ResolveDir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvLogDir)); dir != "" {
		return dir
	}

	candidates := []string{filepath.Join(".", "logs")}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, ".portfolio", "log"))
	}
	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir
		}
	}
	return candidates[0]
}

// TodayFilename returns the daily log filename.
func TodayFilename(now time.Time) string {
	return "stdout_" + now.Format("1-2-06") + ".log"
}

// Writer appends to the daily log file, opening it per write so rotation
// at midnight needs no coordination.
type Writer struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewWriter creates dir if needed and returns a writer into it.
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		dir = ResolveDir()
	}
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.dir, TodayFilename(w.now()))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultLogFilePerm)
	if err != nil {
		return 0, err
	}

	n, writeErr := file.Write(p)
	closeErr := file.Close()
	if writeErr != nil {
		return n, writeErr
	}
	return n, closeErr
}

func (w *Writer) Sync() error {
	return nil
}

// NewZapLogger creates a zap logger writing to stdout and the daily log file.
func NewZapLogger(opts Options) (*zap.Logger, error) {
	writer, err := NewWriter(opts.Dir)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Debug {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	fileEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	consoleConfig := encoderConfig
	if opts.Debug {
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
