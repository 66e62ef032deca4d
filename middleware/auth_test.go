package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("llave-de-prueba")

func signToken(t *testing.T, key []byte, role string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: 7,
		Email:  "cliente@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("error al firmar el token: %v", err)
	}
	return token
}

func newTestRouter(handler gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{AuthRequired(testKey)}, extra...)
	chain = append(chain, handler)
	router.GET("/protegido", chain...)
	return router
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(func(c *gin.Context) {
		userID, role, err := Identity(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if userID != 7 || role != models.RoleCliente {
			t.Errorf("identidad incorrecta: usuario %d, rol %s", userID, role)
		}
		c.Status(http.StatusOK)
	})

	// Sin encabezado
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("sin token esperaba 401, obtuvo %d", w.Code)
	}

	// Token válido con prefijo Bearer
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testKey, "cliente", time.Now().Add(time.Hour)))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("con token válido esperaba 200, obtuvo %d", w.Code)
	}

	// Token vencido
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testKey, "cliente", time.Now().Add(-time.Hour)))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("con token vencido esperaba 401, obtuvo %d", w.Code)
	}

	// Token firmado con otra llave
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []byte("otra-llave"), "cliente", time.Now().Add(time.Hour)))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("con firma ajena esperaba 401, obtuvo %d", w.Code)
	}
}

func TestRoleRequired(t *testing.T) {
	router := newTestRouter(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, RoleRequired(models.RoleAsesor, models.RoleAdmin))

	// Un cliente no pasa el filtro de rol
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testKey, "cliente", time.Now().Add(time.Hour)))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("con rol cliente esperaba 403, obtuvo %d", w.Code)
	}

	// Un asesor sí
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testKey, "asesor", time.Now().Add(time.Hour)))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("con rol asesor esperaba 200, obtuvo %d", w.Code)
	}
}
