package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaVersion is the version every install must converge to. The version of
// the on-disk schema is tracked in SQLite's user_version pragma.
const schemaVersion = 5

// latestSchema is the version-5 shape, used verbatim for fresh databases.
const latestSchema = `
CREATE TABLE decks (
	id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
	name TEXT NOT NULL,
	activated INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE cards (
	id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
	deckId INTEGER NOT NULL,
	word TEXT NOT NULL,
	pronunciation TEXT NOT NULL,
	FOREIGN KEY(deckId) REFERENCES decks(id) ON DELETE CASCADE
);

CREATE INDEX idx_cards_deck ON cards(deckId);
`

type migration struct {
	from  int
	to    int
	apply func(tx *sqlx.Tx) error
}

// migrations must stay in strict ascending order with no gaps. Structural
// changes always go through create-copy-swap: build the new table with the
// full correct shape, copy all rows transformed, drop the old table, rename
// the new one into place. In-place ALTER semantics are not relied on.
var migrations = []migration{
	{from: 1, to: 2, apply: migrateV1DecksIntroduced},
	{from: 2, to: 3, apply: migrateV2DeckActivation},
	{from: 3, to: 4, apply: migrateV3WordFurigana},
	{from: 4, to: 5, apply: migrateV4Pronunciation},
}

// Migrate brings the schema to the current version. A fresh database is
// created directly at the latest version. Each migration step runs inside its
// own transaction so a crash mid-step rolls the step back entirely; a failed
// step leaves the store unopenable and the error must be treated as fatal.
func (db *DB) Migrate() error {
	version, err := db.userVersion()
	if err != nil {
		return err
	}

	if version == 0 {
		fresh, err := db.isFresh()
		if err != nil {
			return err
		}
		if fresh {
			return db.createLatest()
		}
		// A populated database without a recorded version predates
		// versioning and has the version-1 shape.
		version = 1
	}

	if version > schemaVersion {
		return fmt.Errorf("database version %d is newer than supported version %d", version, schemaVersion)
	}

	// Foreign key enforcement is per connection, so pin the pool to one
	// connection for the duration of the migration.
	db.SetMaxOpenConns(1)
	defer db.SetMaxOpenConns(4)

	// Enforcement must be off while tables are swapped out from under their
	// references; it cannot be toggled inside a transaction.
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys for migration: %w", err)
	}

	for _, m := range migrations {
		if m.from < version {
			continue
		}
		if m.from != version {
			return fmt.Errorf("no migration path from version %d", version)
		}
		if err := db.applyMigration(m); err != nil {
			return err
		}
		version = m.to
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to re-enable foreign keys: %w", err)
	}

	var violations []struct {
		Table  string `db:"table"`
		RowID  int64  `db:"rowid"`
		Parent string `db:"parent"`
		FKID   int64  `db:"fkid"`
	}
	if err := db.Select(&violations, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("failed to verify foreign keys after migration: %w", err)
	}
	if len(violations) > 0 {
		return fmt.Errorf("migration left %d foreign key violations", len(violations))
	}

	return nil
}

func (db *DB) applyMigration(m migration) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d->%d: %w", m.from, m.to, err)
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return fmt.Errorf("migration %d->%d failed: %w", m.from, m.to, err)
	}
	// user_version lives in the database header and commits atomically with
	// the rest of the step.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", m.to)); err != nil {
		return fmt.Errorf("failed to record version %d: %w", m.to, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d->%d: %w", m.from, m.to, err)
	}
	return nil
}

func (db *DB) createLatest() error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin schema creation: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(latestSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema creation: %w", err)
	}
	return nil
}

func (db *DB) userVersion() (int, error) {
	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) isFresh() (bool, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('cards', 'decks')")
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return count == 0, nil
}

// migrateV1DecksIntroduced introduces the decks table, creates the default
// deck, and rebuilds cards with a deckId foreign key back-filled to it.
func migrateV1DecksIntroduced(tx *sqlx.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE decks (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			name TEXT NOT NULL
		)`); err != nil {
		return err
	}

	res, err := tx.Exec("INSERT INTO decks (name) VALUES ('Default')")
	if err != nil {
		return err
	}
	defaultDeckID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
		CREATE TABLE cards_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			deckId INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			FOREIGN KEY(deckId) REFERENCES decks(id) ON DELETE CASCADE
		)`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO cards_new (id, deckId, question, answer)
		SELECT id, ?, question, answer FROM cards`, defaultDeckID); err != nil {
		return err
	}
	if _, err := tx.Exec("DROP TABLE cards"); err != nil {
		return err
	}
	_, err = tx.Exec("ALTER TABLE cards_new RENAME TO cards")
	return err
}

// migrateV2DeckActivation adds the activated flag to decks, default true.
func migrateV2DeckActivation(tx *sqlx.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE decks_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			name TEXT NOT NULL,
			activated INTEGER NOT NULL DEFAULT 1
		)`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO decks_new (id, name, activated)
		SELECT id, name, 1 FROM decks`); err != nil {
		return err
	}
	if _, err := tx.Exec("DROP TABLE decks"); err != nil {
		return err
	}
	_, err := tx.Exec("ALTER TABLE decks_new RENAME TO decks")
	return err
}

// migrateV3WordFurigana renames card columns question/answer to word/furigana.
// Pure rename, same semantics.
func migrateV3WordFurigana(tx *sqlx.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE cards_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			deckId INTEGER NOT NULL,
			word TEXT NOT NULL,
			furigana TEXT NOT NULL,
			FOREIGN KEY(deckId) REFERENCES decks(id) ON DELETE CASCADE
		)`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO cards_new (id, deckId, word, furigana)
		SELECT id, deckId, question, answer FROM cards`); err != nil {
		return err
	}
	if _, err := tx.Exec("DROP TABLE cards"); err != nil {
		return err
	}
	_, err := tx.Exec("ALTER TABLE cards_new RENAME TO cards")
	return err
}

// migrateV4Pronunciation renames furigana to pronunciation and adds the deck
// index carried by the final schema.
func migrateV4Pronunciation(tx *sqlx.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE cards_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			deckId INTEGER NOT NULL,
			word TEXT NOT NULL,
			pronunciation TEXT NOT NULL,
			FOREIGN KEY(deckId) REFERENCES decks(id) ON DELETE CASCADE
		)`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO cards_new (id, deckId, word, pronunciation)
		SELECT id, deckId, word, furigana FROM cards`); err != nil {
		return err
	}
	if _, err := tx.Exec("DROP TABLE cards"); err != nil {
		return err
	}
	if _, err := tx.Exec("ALTER TABLE cards_new RENAME TO cards"); err != nil {
		return err
	}
	_, err := tx.Exec("CREATE INDEX idx_cards_deck ON cards(deckId)")
	return err
}
