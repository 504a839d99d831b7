package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/alimgiray/persons/pkg/config"
	"github.com/alimgiray/persons/pkg/logger"
	"github.com/mattn/go-sqlite3"
)

// MemoryPath selects a private in-memory database instead of a file.
const MemoryPath = ":memory:"

//go:embed migrations/*.sql
var migrations embed.FS

var DB *sql.DB

// DriverName is go-sqlite3 with a Unicode aware casefold(text) SQL function.
// The built-in LOWER only folds ASCII letters.
const DriverName = "sqlite3_persons"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", casefold, true)
		},
	})
}

func casefold(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strings.ToLower(v)
	case []byte:
		return strings.ToLower(string(v))
	default:
		return v
	}
}

// Init opens the configured SQLite database, applies migrations and stores the handle in DB
func Init(cfg config.DatabaseConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return err
	}

	DB = db
	return nil
}

// Open opens and tunes a SQLite connection pool without running migrations
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn(cfg.Path))
	if err != nil {
		return nil, err
	}

	if cfg.Path == MemoryPath {
		// Every new connection to :memory: would see its own empty database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Hour)
	}

	// Test the connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err = optimizeDatabase(db, cfg.Path == MemoryPath); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithField("path", cfg.Path).Info("Database connected successfully")
	return db, nil
}

func dsn(dbPath string) string {
	if dbPath == MemoryPath {
		return "file::memory:?_foreign_keys=ON"
	}
	// Writers take the lock at BEGIN so read-then-write transactions wait on busy_timeout
	// instead of failing with a stale snapshot.
	return dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=30000&_txlock=immediate"
}

// optimizeDatabase configures SQLite pragmas; WAL only applies to file databases
func optimizeDatabase(db *sql.DB, inMemory bool) error {
	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA cache_size=10000",
	}
	if !inMemory {
		pragmas = append(pragmas,
			"PRAGMA journal_mode=WAL",
			"PRAGMA synchronous=NORMAL",
			"PRAGMA busy_timeout=30000",
		)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// RunMigrations executes the embedded SQL scripts in file name order.
// Scripts are written to be idempotent.
func RunMigrations(db *sql.DB) error {
	files, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.IsDir() || path.Ext(file.Name()) != ".sql" {
			continue
		}

		sqlContent, err := migrations.ReadFile(path.Join("migrations", file.Name()))
		if err != nil {
			return err
		}

		if _, err := db.Exec(string(sqlContent)); err != nil {
			return fmt.Errorf("migration %s: %w", file.Name(), err)
		}

		logger.WithField("script", file.Name()).Debug("Executed SQL script")
	}

	logger.Info("All SQL scripts executed successfully")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
