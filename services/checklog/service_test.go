package checklog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evan-burke/nscheck/config"
	"github.com/evan-burke/nscheck/internal/logger"
	"github.com/evan-burke/nscheck/internal/models"
)

func testLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true, LogLevel: "error"})
	appLogger.InitLogger()
	return appLogger
}

func newTestService(ringSize int) *checkLogService {
	s := NewCheckLogService(&config.CheckLogConfig{RingSize: ringSize}, testLogger())
	return s.(*checkLogService)
}

func entry(domain string) models.CheckLogEntry {
	return models.CheckLogEntry{
		Domain:    domain,
		Timestamp: time.Now(),
		Success:   true,
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	s := newTestService(10)
	s.Record(entry("a.com"))
	s.Record(entry("b.com"))
	s.Record(entry("c.com"))

	recent := s.Recent(2)

	require.Len(t, recent, 2)
	assert.Equal(t, "c.com", recent[0].Domain)
	assert.Equal(t, "b.com", recent[1].Domain)
}

func TestRecent_WrapsAroundRing(t *testing.T) {
	s := newTestService(3)
	for i := 0; i < 5; i++ {
		s.Record(entry(fmt.Sprintf("domain%d.com", i)))
	}

	recent := s.Recent(0)

	require.Len(t, recent, 3)
	assert.Equal(t, "domain4.com", recent[0].Domain)
	assert.Equal(t, "domain3.com", recent[1].Domain)
	assert.Equal(t, "domain2.com", recent[2].Domain)
}

func TestRecent_EmptyRing(t *testing.T) {
	s := newTestService(10)
	assert.Empty(t, s.Recent(5))
}

func TestRecent_RequestLargerThanStored(t *testing.T) {
	s := newTestService(10)
	s.Record(entry("a.com"))

	recent := s.Recent(50)

	assert.Len(t, recent, 1)
}

func TestFileLoggingDisabledByDefault(t *testing.T) {
	s := newTestService(10)
	assert.Nil(t, s.fileLogger)
}
