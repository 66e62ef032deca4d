package config

import (
	"os"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig regresó error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("puerto por defecto: esperaba 8080, obtuvo %d", cfg.Server.Port)
	}
	if cfg.DB.DBName != "grupofinancial_hub" {
		t.Errorf("nombre de base por defecto: obtuvo %q", cfg.DB.DBName)
	}
	if cfg.Storage.Bucket != "solicitudes-docs" {
		t.Errorf("bucket por defecto: obtuvo %q", cfg.Storage.Bucket)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("dirección de redis por defecto: obtuvo %q", cfg.Redis.Addr)
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	os.Setenv("SERVER_PORT", "9000")
	os.Setenv("STORAGE_BUCKET", "docs-pruebas")
	defer os.Unsetenv("SERVER_PORT")
	defer os.Unsetenv("STORAGE_BUCKET")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig regresó error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("esperaba puerto 9000, obtuvo %d", cfg.Server.Port)
	}
	if cfg.Storage.Bucket != "docs-pruebas" {
		t.Errorf("esperaba bucket docs-pruebas, obtuvo %q", cfg.Storage.Bucket)
	}
}

func TestNewConfigInvalidPort(t *testing.T) {
	os.Setenv("SERVER_PORT", "99999")
	defer os.Unsetenv("SERVER_PORT")

	if _, err := NewConfig(); err == nil {
		t.Error("esperaba error con puerto fuera de rango")
	}
}
