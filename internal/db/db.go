package db

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func InitDB(dbURL string) *sql.DB {
	db, err := sql.Open("mysql", dbURL)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		log.Fatal("Database is not responding:", err)
	}

	log.Println("Connected to database")
	return db
}

func RunMigrations(db *sql.DB) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			fullName VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			address VARCHAR(400),
			role VARCHAR(50) NOT NULL DEFAULT 'Normal User',
			createdAt DATETIME DEFAULT CURRENT_TIMESTAMP,
			resetToken VARCHAR(64),
			resetTokenExpiry DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS stores (
			id INT AUTO_INCREMENT PRIMARY KEY,
			storeName VARCHAR(100) NOT NULL,
			ownerName VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(20) NOT NULL,
			address TEXT NOT NULL,
			description TEXT,
			establishedYear INT,
			website VARCHAR(255),
			ownerId INT NOT NULL,
			createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_stores_owner_id (ownerId),
			FOREIGN KEY (ownerId) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS ratings (
			id INT AUTO_INCREMENT PRIMARY KEY,
			store_id INT NOT NULL,
			user_id INT NOT NULL,
			rating INT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_ratings_store_user (store_id, user_id),
			INDEX idx_ratings_store_id (store_id),
			FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
	}

	for _, q := range queries {
		_, err := db.Exec(q)
		if err != nil {
			log.Fatal("Migration failed:", err)
		}
	}
	log.Println("Migrations completed")
}

// HasTable reports whether a table is present in the connected schema.
// The ratings relation may be missing on partially provisioned databases;
// callers probe once at startup and degrade aggregation instead of
// treating failed queries as control flow.
func HasTable(db *sql.DB, name string) bool {
	var one int
	err := db.QueryRow(
		"SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
		name,
	).Scan(&one)
	return err == nil
}
