package api

import (
	"bytes"
	"fmt"
	"time"

	"pairtrade/internal/app"
	"pairtrade/internal/screener"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	SimulationHandler app.SimulationHandler
	ScreenerHandler   screener.Handler
	Logger            *zap.SugaredLogger
}

// InitializeRouterEngine wires the routes without binding a port, so the
// same engine can back both the standalone server and the lambda adapter.
func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to pairtrade"})
	})
	router.POST("/backtest", m.backtest)
	router.POST("/screen", m.screen)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	fmt.Println(err.Error())
	c.AbortWithStatusJSON(500, gin.H{
		"error": err.Error(),
	})
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: ctx.Writer}
	ctx.Writer = w

	requestID := uuid.New()
	ctx.Set("requestID", requestID.String())

	start := time.Now().UTC()
	ctx.Next()

	m.Logger.Infow("handled request",
		"requestID", requestID,
		"ip", ctx.ClientIP(),
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"statusCode", ctx.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
