// database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/balticwatch/ais-collector/config"
	_ "github.com/go-sql-driver/mysql" // MariaDB, shared deployments
	_ "github.com/mattn/go-sqlite3"    // local single-writer store
)

var DB *sql.DB

// InitDB opens the store and creates the schema if it does not exist.
// The default sqlite driver keeps the whole history in one local file;
// the mysql driver targets MariaDB for deployments where several
// consumers read the history. Each collector run is a single exclusive
// writer episode, so the pool settings stay modest.
func InitDB(cfg config.DatabaseConfig) error {
	var err error

	switch cfg.Driver {
	case "sqlite":
		DB, err = sql.Open("sqlite3", cfg.Path)
	case "mysql":
		// DSN: username:password@protocol(address)/dbname?param=value
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		DB, err = sql.Open("mysql", dsn)
	default:
		return fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == "mysql" {
		DB.SetMaxOpenConns(25)
		DB.SetMaxIdleConns(25)
		DB.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// sqlite: one writer, keep a single connection to avoid lock churn.
		DB.SetMaxOpenConns(1)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = initSchema(cfg.Driver); err != nil {
		DB.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("Database: Connected (%s) and schema verified.\n", cfg.Driver)
	return nil
}

// CloseDB closes the database connection pool.
// Typically called on application shutdown.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Database connection closed.")
	}
}

// initSchema creates both tables and the three required indexes. The id
// column syntax is the only per-driver difference. CREATE INDEX IF NOT
// EXISTS requires MariaDB; stock MySQL does not accept it.
func initSchema(driver string) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "mysql" {
		idColumn = "id INT AUTO_INCREMENT PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS vessel_positions (
				%s,
				timestamp VARCHAR(32) NOT NULL,
				mmsi BIGINT NOT NULL,
				name VARCHAR(128),
				longitude REAL NOT NULL,
				latitude REAL NOT NULL,
				sog REAL,
				cog REAL,
				heading INTEGER,
				nav_stat INTEGER,
				ship_type INTEGER,
				destination VARCHAR(128),
				eta BIGINT,
				draught REAL,
				pos_acc BOOLEAN,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`, idColumn),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS collection_summary (
				%s,
				timestamp VARCHAR(32) NOT NULL,
				vessel_count INTEGER NOT NULL,
				collection_time_ms BIGINT
			)`, idColumn),
		`CREATE INDEX IF NOT EXISTS idx_mmsi ON vessel_positions(mmsi)`,
		`CREATE INDEX IF NOT EXISTS idx_timestamp ON vessel_positions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_mmsi_timestamp ON vessel_positions(mmsi, timestamp)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
