package checklog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evan-burke/nscheck/config"
	"github.com/evan-burke/nscheck/interfaces"
	"github.com/evan-burke/nscheck/internal/logger"
	"github.com/evan-burke/nscheck/internal/models"
)

// checkLogService keeps a bounded in-memory ring of recent check entries.
// The ring is always maintained so restricted hosting environments can
// introspect history without disk access; file persistence is optional.
type checkLogService struct {
	mu      sync.Mutex
	entries []models.CheckLogEntry
	next    int
	filled  bool

	fileLogger *zap.Logger
	log        logger.Logger
}

func NewCheckLogService(cfg *config.CheckLogConfig, log logger.Logger) interfaces.CheckLogService {
	size := cfg.RingSize
	if size <= 0 {
		size = 200
	}

	s := &checkLogService{
		entries: make([]models.CheckLogEntry, size),
		log:     log,
	}

	if cfg.FileEnabled {
		file, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			// Fall back to ring-only operation; some hosts have no
			// writable disk at all.
			log.Warnf("check log file %s not writable: %v", cfg.FilePath, err)
		} else {
			core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(file), zapcore.InfoLevel)
			s.fileLogger = zap.New(core)
		}
	}

	return s
}

func (s *checkLogService) Record(entry models.CheckLogEntry) {
	s.mu.Lock()
	s.entries[s.next] = entry
	s.next++
	if s.next == len(s.entries) {
		s.next = 0
		s.filled = true
	}
	s.mu.Unlock()

	if s.fileLogger != nil {
		s.fileLogger.Info("domain check",
			zap.String("id", entry.ID),
			zap.Time("timestamp", entry.Timestamp),
			zap.String("domain", entry.Domain),
			zap.Bool("success", entry.Success),
			zap.String("ip", entry.IP),
			zap.Strings("errors", entry.Errors),
		)
	}
}

func (s *checkLogService) Recent(n int) []models.CheckLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := len(s.entries)
	count := s.next
	if s.filled {
		count = size
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]models.CheckLogEntry, 0, n)
	for i := 0; i < n; i++ {
		idx := (s.next - 1 - i + size) % size
		out = append(out, s.entries[idx])
	}
	return out
}
