package db

import (
	"database/sql"
	"log"
	"strings"
)

const (
	sqlCreatePostsIndices = `
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
		CREATE INDEX IF NOT EXISTS idx_posts_parent_id ON posts(parent_id);
		CREATE INDEX IF NOT EXISTS idx_posts_uri ON posts(uri);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
	`

	sqlCreateActorsIndices = `
		CREATE INDEX IF NOT EXISTS idx_actors_handle ON actors(handle);
		CREATE INDEX IF NOT EXISTS idx_actors_canonical_url ON actors(canonical_url);
	`

	sqlCreateMessagesIndices = `
		CREATE INDEX IF NOT EXISTS idx_messages_recipient_id ON messages(recipient_id);
		CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id);
	`

	sqlCreateFollowsIndices = `
		CREATE INDEX IF NOT EXISTS idx_follows_actor_id ON follows(actor_id);
		CREATE INDEX IF NOT EXISTS idx_follows_target_actor_id ON follows(target_actor_id);
	`

	// Columns added after the initial schema shipped. ALTER TABLE fails when
	// the column already exists, which is fine.
	sqlExtendPostsTable = `
		ALTER TABLE posts ADD COLUMN coordinates varchar(100) default '';
		ALTER TABLE posts ADD COLUMN source_client varchar(255) default '';
	`
)

// RunMigrations executes all database migrations.
func (db *DB) RunMigrations() error {
	log.Println("Running migrations...")

	for _, block := range []string{
		sqlCreatePostsIndices,
		sqlCreateActorsIndices,
		sqlCreateMessagesIndices,
		sqlCreateFollowsIndices,
	} {
		if err := db.execStatements(block); err != nil {
			return err
		}
	}

	// Tolerant column additions
	db.execTolerant(sqlExtendPostsTable)

	log.Println("Migrations complete")
	return nil
}

func (db *DB) execStatements(block string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		for _, stmt := range splitStatements(block) {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *DB) execTolerant(block string) {
	for _, stmt := range splitStatements(block) {
		if _, err := db.db.Exec(stmt); err != nil {
			if !strings.Contains(err.Error(), "duplicate column name") {
				log.Printf("Migration statement failed (may be normal): %v", err)
			}
		}
	}
}

func splitStatements(block string) []string {
	var out []string
	for _, stmt := range strings.Split(block, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
