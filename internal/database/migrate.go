package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

const usersDDL = `CREATE TABLE IF NOT EXISTS app_users (
	id            CHAR(36)     NOT NULL PRIMARY KEY,
	email         VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role          ENUM('admin','user') NOT NULL DEFAULT 'user',
	last_login    DATETIME     NULL,
	contact_data  JSON         NULL,
	created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_app_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const apiTokensDDL = `CREATE TABLE IF NOT EXISTS api_tokens (
	id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	user_id            CHAR(36)     NOT NULL,
	token              VARCHAR(1024) NOT NULL,
	token_hash         CHAR(64)     AS (SHA2(token, 256)) STORED,
	remaining_requests INT          NOT NULL,
	expires_at         DATETIME     NOT NULL,
	created_at         DATETIME(6)  NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	KEY ix_api_tokens_hash (token_hash),
	KEY ix_api_tokens_user (user_id),
	CONSTRAINT fk_api_tokens_user FOREIGN KEY (user_id) REFERENCES app_users (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// intColumns are the non-string resource columns besides external_id.
var intColumns = map[string]bool{"episode_id": true}

// ResourceDDL returns the CREATE TABLE statement for a resource kind.
// external_id is the unique upsert key; every other column is text.
func ResourceDDL(k model.Kind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS `%s` (\n", k.Table())
	b.WriteString("\tid BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,\n")
	for _, col := range k.Columns() {
		switch {
		case col == "external_id":
			b.WriteString("\texternal_id INT NOT NULL,\n")
		case intColumns[col]:
			fmt.Fprintf(&b, "\t`%s` INT NOT NULL DEFAULT 0,\n", col)
		default:
			fmt.Fprintf(&b, "\t`%s` TEXT NOT NULL,\n", col)
		}
	}
	fmt.Fprintf(&b, "\tUNIQUE KEY uq_%s_external_id (external_id)\n", k.Table())
	b.WriteString(") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	return b.String()
}

// Migrate creates every table the service needs when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{usersDDL, apiTokensDDL}
	for _, k := range model.Kinds {
		stmts = append(stmts, ResourceDDL(k))
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
