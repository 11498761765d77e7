package db

import (
	"context"
	"database/sql"
)

// sqliteSchema crea las tablas de la demo: usuarios, tareas y la cadena de
// auditoría organizations → positions → levels.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		nombre TEXT NOT NULL,
		birth_date DATE,
		created_at DATETIME NOT NULL,
		deleted_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		assignee_id TEXT REFERENCES users(id),
		status TEXT NOT NULL,
		created_by TEXT REFERENCES users(id),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS levels (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		rank INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		level_id INTEGER REFERENCES levels(id)
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		user_id TEXT REFERENCES users(id),
		position_id INTEGER REFERENCES positions(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_user ON organizations(user_id)`,
}

// InitSQLite crea el esquema si no existe.
func InitSQLite(ctx context.Context, db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
