package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/config"
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database representa la conexión a la base de datos
type Database struct {
	DB *gorm.DB
}

// NewDatabase crea una nueva conexión a la base de datos con migraciones
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Database{DB: db}, nil
}

// GetDB regresa la instancia de GORM
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Close cierra la conexión a la base de datos
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Connect establece la conexión con la base de datos y ejecuta migraciones
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.DBName,
	)

	// Configuramos el logger de GORM
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("error de conexión a la base de datos: %v", err)
	}

	// Configuramos el pool de conexiones
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error al obtener el pool de conexiones: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Ejecutamos migraciones SQL
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("error al ejecutar migraciones SQL: %v", err)
	}

	// Migración automática de modelos
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("error en la migración automática de modelos: %v", err)
	}

	return db, nil
}

// runMigrations ejecuta las migraciones SQL
func runMigrations(cfg *config.Config) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
	)

	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("error al crear la migración: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("error al ejecutar migraciones: %v", err)
	}

	return nil
}

// autoMigrate ejecuta la migración automática de modelos
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.CreditRequest{},
		&models.RequestDocument{},
	)
	if err != nil {
		return fmt.Errorf("error en la migración automática: %v", err)
	}

	return nil
}
