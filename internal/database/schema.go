package database

import "database/sql"

// schema contains the full table layout. Every statement is idempotent so
// Migrate can run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT    NOT NULL UNIQUE,
    email         TEXT    NOT NULL UNIQUE,
    password_hash TEXT    NOT NULL,
    full_name     TEXT    NOT NULL,
    phone         TEXT,
    address       TEXT,
    user_type     TEXT    NOT NULL DEFAULT 'citizen' CHECK (user_type IN ('citizen','lawyer','admin')),
    profile_image TEXT,
    is_verified   INTEGER NOT NULL DEFAULT 0,
    is_active     INTEGER NOT NULL DEFAULT 1,
    last_login    DATETIME,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_sessions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    session_token TEXT    NOT NULL,
    refresh_token TEXT    NOT NULL,
    device_info   TEXT,
    ip_address    TEXT,
    user_agent    TEXT,
    is_active     INTEGER NOT NULL DEFAULT 1,
    expires_at    DATETIME NOT NULL,
    last_accessed DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sessions_token ON user_sessions(session_token);
CREATE INDEX IF NOT EXISTS idx_sessions_refresh ON user_sessions(refresh_token);

CREATE TABLE IF NOT EXISTS legal_cases (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id            INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    assigned_lawyer_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    case_number        TEXT    NOT NULL UNIQUE,
    title              TEXT    NOT NULL,
    description        TEXT    NOT NULL,
    case_type          TEXT    NOT NULL,
    status             TEXT    NOT NULL DEFAULT 'pending',
    priority           TEXT    NOT NULL DEFAULT 'medium',
    court_name         TEXT,
    judge_name         TEXT,
    next_hearing_date  DATETIME,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS document_analysis (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id            INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    case_id            INTEGER REFERENCES legal_cases(id) ON DELETE SET NULL,
    original_filename  TEXT    NOT NULL,
    file_path          TEXT    NOT NULL,
    file_type          TEXT    NOT NULL,
    file_size          INTEGER NOT NULL,
    status             TEXT    NOT NULL DEFAULT 'processing' CHECK (status IN ('processing','completed','failed')),
    summary            TEXT,
    key_points         TEXT,
    extracted_entities TEXT,
    legal_references   TEXT,
    analysis_result    TEXT,
    confidence_score   REAL,
    processing_time    REAL,
    error_message      TEXT,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_user ON document_analysis(user_id);

CREATE TABLE IF NOT EXISTS sos_alerts (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id            INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    responder_id       INTEGER REFERENCES users(id) ON DELETE SET NULL,
    alert_type         TEXT    NOT NULL CHECK (alert_type IN ('police','medical','legal','fire','general')),
    description        TEXT    NOT NULL,
    location_lat       REAL,
    location_lng       REAL,
    address            TEXT,
    emergency_contacts TEXT,
    severity           TEXT    NOT NULL DEFAULT 'medium',
    status             TEXT    NOT NULL DEFAULT 'active' CHECK (status IN ('active','responded','resolved','cancelled')),
    is_test_alert      INTEGER NOT NULL DEFAULT 0,
    response_notes     TEXT,
    response_time      DATETIME,
    resolved_at        DATETIME,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS civic_feedback (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER REFERENCES users(id) ON DELETE SET NULL,
    category     TEXT    NOT NULL,
    subject      TEXT    NOT NULL,
    description  TEXT    NOT NULL,
    location     TEXT,
    priority     TEXT    NOT NULL DEFAULT 'medium',
    status       TEXT    NOT NULL DEFAULT 'submitted',
    is_anonymous INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS whistleblower_reports (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    reporter_id           INTEGER REFERENCES users(id) ON DELETE SET NULL,
    report_id             TEXT    NOT NULL UNIQUE,
    title                 TEXT    NOT NULL,
    description           TEXT    NOT NULL,
    category              TEXT    NOT NULL,
    severity              TEXT    NOT NULL DEFAULT 'medium',
    organization_involved TEXT,
    estimated_impact      TEXT,
    status                TEXT    NOT NULL DEFAULT 'submitted',
    is_anonymous          INTEGER NOT NULL DEFAULT 0,
    created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS legal_consultations (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id         INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    lawyer_id         INTEGER REFERENCES users(id) ON DELETE SET NULL,
    consultation_type TEXT    NOT NULL CHECK (consultation_type IN ('chat','video','phone','in_person')),
    scheduled_at      DATETIME NOT NULL,
    duration_minutes  INTEGER NOT NULL DEFAULT 30,
    status            TEXT    NOT NULL DEFAULT 'requested',
    notes             TEXT,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title      TEXT    NOT NULL,
    message    TEXT    NOT NULL,
    type       TEXT    NOT NULL DEFAULT 'info',
    category   TEXT    NOT NULL DEFAULT 'general',
    priority   TEXT    NOT NULL DEFAULT 'normal',
    is_read    INTEGER NOT NULL DEFAULT 0,
    read_at    DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read);
`

// Migrate applies the embedded schema.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
