package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the DDL for all tables in dependency order.  The
// statements are idempotent so EnsureSchema can run at every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		registered_on DATETIME NOT NULL,
		confirmed TINYINT(1) NOT NULL DEFAULT 0,
		confirmed_on DATETIME NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS operations (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		path VARCHAR(255) NOT NULL UNIQUE,
		category VARCHAR(255) NOT NULL DEFAULT 'default',
		description VARCHAR(255) NOT NULL DEFAULT '',
		active TINYINT(1) NOT NULL DEFAULT 1,
		last_used DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		u_id BIGINT UNSIGNED NOT NULL,
		op_id BIGINT UNSIGNED NOT NULL,
		access_level ENUM('viewer','collaborator','admin','creator') NOT NULL,
		UNIQUE KEY uq_perm (u_id, op_id),
		CONSTRAINT fk_perm_user FOREIGN KEY (u_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_perm_op FOREIGN KEY (op_id) REFERENCES operations(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		op_id BIGINT UNSIGNED NOT NULL,
		u_id BIGINT UNSIGNED NOT NULL,
		text TEXT NOT NULL,
		message_type ENUM('text','system','image','document') NOT NULL DEFAULT 'text',
		reply_id BIGINT UNSIGNED NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_messages_op (op_id),
		CONSTRAINT fk_msg_op FOREIGN KEY (op_id) REFERENCES operations(id) ON DELETE CASCADE,
		CONSTRAINT fk_msg_user FOREIGN KEY (u_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_msg_reply FOREIGN KEY (reply_id) REFERENCES messages(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS changes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		op_id BIGINT UNSIGNED NOT NULL,
		u_id BIGINT UNSIGNED NOT NULL,
		commit_hash CHAR(40) NOT NULL,
		version_name VARCHAR(255) NOT NULL DEFAULT '',
		comment VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_changes_op (op_id),
		CONSTRAINT fk_change_op FOREIGN KEY (op_id) REFERENCES operations(id) ON DELETE CASCADE,
		CONSTRAINT fk_change_user FOREIGN KEY (u_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS documents (
		op_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		content MEDIUMTEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT fk_doc_op FOREIGN KEY (op_id) REFERENCES operations(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.  Safe to call on every
// startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
