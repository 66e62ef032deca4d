package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// UserRole representa el rol de un usuario dentro de la plataforma
type UserRole string

const (
	RoleCliente UserRole = "cliente"
	RoleAsesor  UserRole = "asesor"
	RoleAdmin   UserRole = "admin"
)

// CanReview indica si el rol puede aceptar o rechazar documentos
func (r UserRole) CanReview() bool {
	return r == RoleAsesor || r == RoleAdmin
}

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	FirstName string    `gorm:"column:first_name;not null;size:50"`
	LastName  string    `gorm:"column:last_name;not null;size:50"`
	Email     string    `gorm:"column:email;unique;not null;size:100;index"`
	Password  string    `gorm:"column:password;not null;size:100"`
	Phone     string    `gorm:"column:phone;size:20"`
	Role      UserRole  `gorm:"column:role;type:varchar(20);not null;default:'cliente'"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hook de validación antes de crear
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.FirstName) < 2 || len(u.FirstName) > 50 {
		return errors.New("el nombre debe tener entre 2 y 50 caracteres")
	}
	if len(u.LastName) < 2 || len(u.LastName) > 50 {
		return errors.New("el apellido debe tener entre 2 y 50 caracteres")
	}
	if len(u.Email) < 3 || len(u.Email) > 100 {
		return errors.New("el correo debe tener entre 3 y 100 caracteres")
	}
	switch u.Role {
	case RoleCliente, RoleAsesor, RoleAdmin, "":
	default:
		return errors.New("rol de usuario no válido")
	}
	return nil
}
