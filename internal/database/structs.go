package database

import (
	"time"

	"github.com/google/uuid"
)

// Run is one row of the runs table: a single pass over one replay.
type Run struct {
	ID        uuid.UUID
	Source    string // Input path as given on the command line
	Formats   string // Comma-separated sink formats written alongside
	StartedAt time.Time
}

// columnTypes declares the SQLite affinity of every data column. Columns not
// listed are INTEGER.
var columnTypes = map[string]string{
	"steam_id":   "TEXT",
	"user_name":  "TEXT",
	"place_name": "TEXT",
	"weapon":     "TEXT",
	"event":      "TEXT",
	"pitch":      "REAL",
	"yaw":        "REAL",
	"speed":      "REAL",
	"x":          "REAL",
	"y":          "REAL",
	"z":          "REAL",
}

func columnType(col string) string {
	if t, ok := columnTypes[col]; ok {
		return t
	}
	return "INTEGER"
}
