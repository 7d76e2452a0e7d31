package interfaces

import "github.com/evan-burke/nscheck/internal/models"

type CheckLogService interface {
	// Record stores the entry in the in-memory ring buffer and, when file
	// logging is enabled, writes it to disk as well.
	Record(entry models.CheckLogEntry)

	// Recent returns up to n entries, newest first.
	Recent(n int) []models.CheckLogEntry
}
