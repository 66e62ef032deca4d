package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config representa la configuración de la aplicación
type Config struct {
	Server struct {
		Port    int
		OpsPort int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // en horas
	}
	Storage struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}
	Redis struct {
		Addr     string
		Password string
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
}

// NewConfig crea una nueva instancia de configuración leyendo variables de
// entorno con valores por defecto para desarrollo local
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Servidor
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("OPS_PORT", 9090)

	// Base de datos
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "grupofinancial_hub")

	// JWT
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// Almacenamiento de objetos
	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "minioadmin")
	v.SetDefault("STORAGE_SECRET_KEY", "minioadmin")
	v.SetDefault("STORAGE_BUCKET", "solicitudes-docs")
	v.SetDefault("STORAGE_USE_SSL", false)

	// Redis
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")

	// SMTP
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "notificaciones@grupofinancial.mx")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "notificaciones@grupofinancial.mx")

	cfg := &Config{}

	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.OpsPort = v.GetInt("OPS_PORT")
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("puerto de servidor no válido: %d", cfg.Server.Port)
	}

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	if cfg.DB.Port <= 0 || cfg.DB.Port > 65535 {
		return nil, fmt.Errorf("puerto de base de datos no válido: %d", cfg.DB.Port)
	}

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.Storage.Endpoint = v.GetString("STORAGE_ENDPOINT")
	cfg.Storage.AccessKey = v.GetString("STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = v.GetString("STORAGE_SECRET_KEY")
	cfg.Storage.Bucket = v.GetString("STORAGE_BUCKET")
	cfg.Storage.UseSSL = v.GetBool("STORAGE_USE_SSL")

	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	return cfg, nil
}
