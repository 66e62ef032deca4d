package controllers

import (
	"net/http"
	"strconv"

	"github.com/SeraphMX/grupofinancial-hub-sub000/database"
	"github.com/SeraphMX/grupofinancial-hub-sub000/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UserController atiende la administración de usuarios
type UserController struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserController crea una nueva instancia de UserController
func NewUserController(db *database.Database) *UserController {
	return &UserController{
		userService: services.NewUserService(db),
		validate:    validator.New(),
	}
}

// userID obtiene el ID de usuario de la ruta
func userID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID de usuario no válido"})
		return 0, false
	}
	return uint(id), true
}

// List regresa todos los usuarios
func (c *UserController) List(ctx *gin.Context) {
	users, err := c.userService.ListUsers()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los usuarios"})
		return
	}
	ctx.JSON(http.StatusOK, users)
}

// Create da de alta un usuario con cualquier rol
func (c *UserController) Create(ctx *gin.Context) {
	var req services.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}

	if err := c.validate.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := c.userService.CreateUserInternal(req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, services.ToUserDTO(user))
}

// Update modifica los datos editables de un usuario
func (c *UserController) Update(ctx *gin.Context) {
	id, ok := userID(ctx)
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}

	if err := c.validate.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := c.userService.UpdateUser(id, req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, services.ToUserDTO(user))
}

// ResetPassword asigna una contraseña temporal y la regresa en claro
func (c *UserController) ResetPassword(ctx *gin.Context) {
	id, ok := userID(ctx)
	if !ok {
		return
	}

	tempPassword, err := c.userService.ResetPassword(id)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tempPassword": tempPassword})
}
