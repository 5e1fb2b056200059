package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = "10.0.0.1:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Un limitador global encima de un limitador por ruta es la configuración del
// webhook de facturación. Ambos cuentan la misma IP y el handler debe
// ejecutarse igual: si alguno retiene su lock mientras corre el resto de la
// cadena, la petición se queda bloqueada para siempre.
func TestRateLimiter_AnidadoNoSeBloquea(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(1000, time.Minute))
	r.POST("/webhook", RateLimiter(60, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	done := make(chan int, 1)
	go func() {
		done <- doRequest(r, "/webhook").Code
	}()

	select {
	case code := <-done:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("la petición al webhook nunca terminó")
	}
}

// Cada llamada a RateLimiter crea un limitador independiente: el tráfico que
// pasa por el limitador global no debe consumir el presupuesto del webhook,
// ni al revés.
func TestRateLimiter_PresupuestosIndependientes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(100, time.Minute))
	r.POST("/api", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/webhook", RateLimiter(3, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, doRequest(r, "/api").Code)
	}

	// El webhook conserva sus 3 peticiones pese a las 50 que ya pasaron.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "/webhook").Code)
	}
	resp := doRequest(r, "/webhook")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	// Y el global sigue aceptando tráfico.
	assert.Equal(t, http.StatusOK, doRequest(r, "/api").Code)
}

func TestLoginRateLimiter_CortaAlExcederIntentos(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginRateLimiter(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, doRequest(r, "/login").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "/login").Code)
}
