package controllers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/config"
	"github.com/SeraphMX/grupofinancial-hub-sub000/database"
	"github.com/SeraphMX/grupofinancial-hub-sub000/middleware"
	"github.com/SeraphMX/grupofinancial-hub-sub000/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	userService *services.UserService
	validate    *validator.Validate
	config      *config.Config
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignUpRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,password"`
	Phone     string `json:"phone" validate:"omitempty,min=10,max=20"`
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  services.UserDTO `json:"user"`
}

func NewAuthController(db *database.Database, cfg *config.Config) *AuthController {
	validate := validator.New()

	// Validación personalizada de contraseña
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
		hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
		hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
		return hasNumber && hasUpper && hasLower
	})

	return &AuthController{
		userService: services.NewUserService(db),
		validate:    validate,
		config:      cfg,
	}
}

// SignIn procesa el inicio de sesión
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}

	if err := c.validate.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := c.userService.FindByEmail(req.Email)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales no válidas"})
		return
	}

	if !user.Active {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "La cuenta está desactivada"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales no válidas"})
		return
	}

	token, err := c.generateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar el token"})
		return
	}

	ctx.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  services.ToUserDTO(user),
	})
}

// SignUp procesa el registro de un nuevo cliente
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}

	if err := c.validate.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// El registro público siempre crea clientes; los asesores y
	// administradores se dan de alta desde la administración.
	user, err := c.userService.CreateUserInternal(services.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := c.generateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar el token"})
		return
	}

	ctx.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  services.ToUserDTO(user),
	})
}

// GetJWTKey regresa la llave de firma de tokens
func (c *AuthController) GetJWTKey() string {
	return c.config.JWT.SecretKey
}

// generateToken crea un token JWT con la identidad y rol del usuario
func (c *AuthController) generateToken(userID uint, email, role string) (string, error) {
	expirationTime := time.Now().Add(time.Duration(c.config.JWT.ExpiresIn) * time.Hour)
	claims := &middleware.Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.config.JWT.SecretKey))
}
