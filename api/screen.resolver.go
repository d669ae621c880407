package api

import (
	"fmt"

	"pairtrade/internal/screener"

	"github.com/gin-gonic/gin"
)

type ScreenRequest struct {
	TrainStart string `json:"trainStart"`
	TrainEnd   string `json:"trainEnd"`
	TestStart  string `json:"testStart"`
	TestEnd    string `json:"testEnd"`

	OutputPath           string  `json:"outputPath"`
	UniverseSize         int     `json:"universeSize"`
	CorrelationThreshold float64 `json:"correlationThreshold"`
	PValueThreshold      float64 `json:"pValueThreshold"`
	TopPairs             int     `json:"topPairs"`
}

func (h ApiHandler) screen(c *gin.Context) {
	var requestBody ScreenRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	window, err := parseWindow(requestBody.TrainStart, requestBody.TrainEnd, requestBody.TestStart, requestBody.TestEnd)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if requestBody.OutputPath == "" {
		returnErrorJson(fmt.Errorf("outputPath is required"), c)
		return
	}

	in := screener.ScreenWindowInput{
		Window:               *window,
		OutputPath:           requestBody.OutputPath,
		UniverseSize:         requestBody.UniverseSize,
		CorrelationThreshold: requestBody.CorrelationThreshold,
		PValueThreshold:      requestBody.PValueThreshold,
		TopPairs:             requestBody.TopPairs,
	}
	if in.UniverseSize == 0 {
		in.UniverseSize = 1000
	}
	if in.CorrelationThreshold == 0 {
		in.CorrelationThreshold = 0.95
	}
	if in.PValueThreshold == 0 {
		in.PValueThreshold = 0.05
	}
	if in.TopPairs == 0 {
		in.TopPairs = 20
	}

	if err := h.ScreenerHandler.ScreenWindow(in); err != nil {
		returnErrorJson(fmt.Errorf("failed to screen pairs: %w", err), c)
		return
	}

	c.JSON(200, gin.H{"outputPath": requestBody.OutputPath})
}
