package store

const schema = `
CREATE TABLE IF NOT EXISTS missions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid         TEXT NOT NULL UNIQUE,
    robot_id     TEXT NOT NULL,
    start_x      INTEGER NOT NULL,
    start_y      INTEGER NOT NULL,
    goal_x       INTEGER NOT NULL,
    goal_y       INTEGER NOT NULL,
    path_len     INTEGER NOT NULL,
    status       TEXT NOT NULL DEFAULT 'active',
    created_at   TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    completed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_missions_robot ON missions(robot_id);
CREATE INDEX IF NOT EXISTS idx_missions_status ON missions(status);

CREATE TABLE IF NOT EXISTS status_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    robot_id   TEXT NOT NULL,
    old_status TEXT NOT NULL,
    new_status TEXT NOT NULL,
    health     REAL NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_status_log_robot ON status_log(robot_id);

CREATE TABLE IF NOT EXISTS hazard_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    zone_id     TEXT NOT NULL,
    old_level   TEXT NOT NULL,
    new_level   TEXT NOT NULL,
    temperature REAL NOT NULL,
    vibration   REAL NOT NULL,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_hazard_log_zone ON hazard_log(zone_id);
`
