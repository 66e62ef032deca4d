package services

import (
	"errors"

	"github.com/SeraphMX/grupofinancial-hub-sub000/database"
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *database.Database
}

type UserDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone" validate:"omitempty,min=10,max=20"`
	Role      string `json:"role" validate:"omitempty,oneof=cliente asesor admin"`
}

// UpdateUserRequest representa los campos editables por un administrador
type UpdateUserRequest struct {
	FirstName string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName  string `json:"lastName" validate:"omitempty,min=2,max=50"`
	Phone     string `json:"phone" validate:"omitempty,min=10,max=20"`
	Role      string `json:"role" validate:"omitempty,oneof=cliente asesor admin"`
	Active    *bool  `json:"active"`
}

func NewUserService(db *database.Database) *UserService {
	return &UserService{db: db}
}

// ToUserDTO convierte un modelo User en su DTO
func ToUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Active:    u.Active,
	}
}

// CreateUserInternal crea un nuevo usuario
func (h *UserService) CreateUserInternal(req CreateUserRequest) (*models.User, error) {
	// Verificamos si ya existe un usuario con ese correo
	var existingUser models.User
	if err := h.db.DB.Where("LOWER(email) = LOWER(?)", req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("ya existe un usuario con ese correo")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Hasheamos la contraseña
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := models.UserRole(req.Role)
	if role == "" {
		role = models.RoleCliente
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Phone:     req.Phone,
		Role:      role,
		Active:    true,
	}

	if err := h.db.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// FindByEmail busca un usuario por correo (ignorando mayúsculas y espacios)
func (h *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := h.db.DB.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("usuario no encontrado")
		}
		return nil, err
	}
	return &user, nil
}

// FindByID busca un usuario por ID
func (h *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := h.db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("usuario no encontrado")
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers regresa todos los usuarios para la administración
func (h *UserService) ListUsers() ([]UserDTO, error) {
	var users []models.User
	if err := h.db.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = ToUserDTO(&users[i])
	}
	return dtos, nil
}

// UpdateUser actualiza los datos editables de un usuario
func (h *UserService) UpdateUser(id uint, req UpdateUserRequest) (*models.User, error) {
	user, err := h.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		user.Role = models.UserRole(req.Role)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.db.DB.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword genera una contraseña temporal y la asigna al usuario.
// Regresa la contraseña en claro para que el administrador la entregue.
func (h *UserService) ResetPassword(id uint) (string, error) {
	user, err := h.FindByID(id)
	if err != nil {
		return "", err
	}

	tempPassword, err := utils.GenerateSecureToken(9)
	if err != nil {
		return "", errors.New("error al generar la contraseña temporal")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user.Password = string(hashed)
	if err := h.db.DB.Save(user).Error; err != nil {
		return "", err
	}

	return tempPassword, nil
}
