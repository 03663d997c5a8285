package store

import "database/sql"

// StatusEntry records one robot operating status transition.
type StatusEntry struct {
	ID        int64   `json:"id"`
	RobotID   string  `json:"robot_id"`
	OldStatus string  `json:"old_status"`
	NewStatus string  `json:"new_status"`
	Health    float64 `json:"health"`
	CreatedAt string  `json:"created_at"`
}

// HazardEntry records one zone hazard level transition.
type HazardEntry struct {
	ID          int64   `json:"id"`
	ZoneID      string  `json:"zone_id"`
	OldLevel    string  `json:"old_level"`
	NewLevel    string  `json:"new_level"`
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
	CreatedAt   string  `json:"created_at"`
}

func (db *DB) InsertStatusEntry(robotID, oldStatus, newStatus string, health float64) error {
	_, err := db.Exec(`INSERT INTO status_log (robot_id, old_status, new_status, health) VALUES (?, ?, ?, ?)`,
		robotID, oldStatus, newStatus, health)
	return err
}

func (db *DB) ListStatusEntries(limit int) ([]StatusEntry, error) {
	rows, err := db.Query(`SELECT id, robot_id, old_status, new_status, health, created_at
		FROM status_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatusEntries(rows)
}

func scanStatusEntries(rows *sql.Rows) ([]StatusEntry, error) {
	var entries []StatusEntry
	for rows.Next() {
		var e StatusEntry
		if err := rows.Scan(&e.ID, &e.RobotID, &e.OldStatus, &e.NewStatus, &e.Health, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *DB) InsertHazardEntry(zoneID, oldLevel, newLevel string, temperature, vibration float64) error {
	_, err := db.Exec(`INSERT INTO hazard_log (zone_id, old_level, new_level, temperature, vibration) VALUES (?, ?, ?, ?, ?)`,
		zoneID, oldLevel, newLevel, temperature, vibration)
	return err
}

func (db *DB) ListHazardEntries(limit int) ([]HazardEntry, error) {
	rows, err := db.Query(`SELECT id, zone_id, old_level, new_level, temperature, vibration, created_at
		FROM hazard_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []HazardEntry
	for rows.Next() {
		var e HazardEntry
		if err := rows.Scan(&e.ID, &e.ZoneID, &e.OldLevel, &e.NewLevel, &e.Temperature, &e.Vibration, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
