package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Event represents a single loggable occurrence in the controller: a mode
// change, a shown-message change, feed connects and disconnects, config
// reloads.
type Event struct {
	Timestamp time.Time
	Level     string
	Category  string
	Message   string
	Details   string
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS system_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    level TEXT NOT NULL,
    category TEXT NOT NULL,
    message TEXT NOT NULL,
    details TEXT
);`

// Writer is a long-running goroutine that listens for events and appends
// them to a daily SQLite database.
func Writer(ctx context.Context, wg *sync.WaitGroup, eventChan <-chan Event, logger *log.Logger) {
	defer wg.Done()
	logger.Println("Event Writer Goroutine Started.")
	dbConnections := make(map[string]*sql.DB)
	defer func() {
		for _, db := range dbConnections {
			db.Close()
		}
		logger.Println("Event Writer Goroutine Shutting Down.")
	}()

	writeEvent := func(event Event) {
		dateStr := event.Timestamp.Format("2006-01-02")
		db, ok := dbConnections[dateStr]
		if !ok {
			var err error
			fileName := fmt.Sprintf("sign_events_%s.db", dateStr)
			db, err = sql.Open("sqlite", fileName)
			if err != nil {
				logger.Printf("FATAL: Could not open/create database %s: %v", fileName, err)
				return
			}
			dbConnections[dateStr] = db

			if _, err = db.Exec(createTableSQL); err != nil {
				logger.Printf("FATAL: Could not create table in %s: %v", fileName, err)
				db.Close()
				delete(dbConnections, dateStr)
				return
			}
			logger.Printf("Successfully opened and verified database: %s", fileName)
		}

		stmt, err := db.Prepare("INSERT INTO system_logs(timestamp, level, category, message, details) VALUES(?, ?, ?, ?, ?)")
		if err != nil {
			logger.Printf("ERROR: Failed to prepare SQL statement: %v", err)
			return
		}
		defer stmt.Close()

		timestampStr := event.Timestamp.Format("2006-01-02 15:04:05.000")
		if _, err = stmt.Exec(timestampStr, event.Level, event.Category, event.Message, event.Details); err != nil {
			logger.Printf("ERROR: Failed to insert event into database: %v", err)
		}
	}

	for {
		select {
		case event, ok := <-eventChan:
			if !ok { // Channel has been closed from a clean shutdown
				return
			}
			writeEvent(event)

		case <-ctx.Done():
			logger.Println("Shutdown signal received. Writing remaining events to database...")
			for len(eventChan) > 0 {
				event := <-eventChan
				writeEvent(event)
			}
			return
		}
	}
}
