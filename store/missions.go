package store

import "database/sql"

// Mission records one planned trip for a robot.
type Mission struct {
	ID          int64   `json:"id"`
	UUID        string  `json:"uuid"`
	RobotID     string  `json:"robot_id"`
	StartX      int     `json:"start_x"`
	StartY      int     `json:"start_y"`
	GoalX       int     `json:"goal_x"`
	GoalY       int     `json:"goal_y"`
	PathLen     int     `json:"path_len"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at"`
}

const missionSelectCols = `id, uuid, robot_id, start_x, start_y, goal_x, goal_y, path_len, status, created_at, completed_at`

func (db *DB) CreateMission(uuid, robotID string, startX, startY, goalX, goalY, pathLen int) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO missions (uuid, robot_id, start_x, start_y, goal_x, goal_y, path_len)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid, robotID, startX, startY, goalX, goalY, pathLen)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteMission marks a mission completed. Missions already superseded are
// left untouched.
func (db *DB) CompleteMission(uuid string) error {
	_, err := db.Exec(`UPDATE missions SET status='completed', completed_at=datetime('now','localtime')
		WHERE uuid=? AND status='active'`, uuid)
	return err
}

// SupersedeActiveMissions retires any still-active missions for a robot.
// Called before a new mission is created so a robot has at most one active trip.
func (db *DB) SupersedeActiveMissions(robotID string) error {
	_, err := db.Exec(`UPDATE missions SET status='superseded', completed_at=datetime('now','localtime')
		WHERE robot_id=? AND status='active'`, robotID)
	return err
}

func (db *DB) ListMissions(limit int) ([]Mission, error) {
	rows, err := db.Query(`SELECT `+missionSelectCols+` FROM missions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMissions(rows)
}

func (db *DB) ListMissionsByRobot(robotID string, limit int) ([]Mission, error) {
	rows, err := db.Query(`SELECT `+missionSelectCols+` FROM missions WHERE robot_id=? ORDER BY id DESC LIMIT ?`, robotID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMissions(rows)
}

func (db *DB) GetMissionByUUID(uuid string) (*Mission, error) {
	m := &Mission{}
	err := db.QueryRow(`SELECT `+missionSelectCols+` FROM missions WHERE uuid=?`, uuid).
		Scan(&m.ID, &m.UUID, &m.RobotID, &m.StartX, &m.StartY, &m.GoalX, &m.GoalY,
			&m.PathLen, &m.Status, &m.CreatedAt, &m.CompletedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scanMissions(rows *sql.Rows) ([]Mission, error) {
	var missions []Mission
	for rows.Next() {
		var m Mission
		if err := rows.Scan(&m.ID, &m.UUID, &m.RobotID, &m.StartX, &m.StartY, &m.GoalX, &m.GoalY,
			&m.PathLen, &m.Status, &m.CreatedAt, &m.CompletedAt); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}
