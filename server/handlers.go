package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kydenul/lotofacil"
)

// GenerateBody is the JSON body of POST /api/generate. Draws are comma-separated text.
type GenerateBody struct {
	Draw1         string `json:"draw1"`
	Draw2         string `json:"draw2"`
	Draw3         string `json:"draw3"`
	CurrentResult string `json:"current_result"`
	Mode          string `json:"mode"`
	Quantity      int    `json:"quantity"`
	Exclude       []int  `json:"exclude"`
	Include       []int  `json:"include"`
}

// toRequest parses the text fields into a GenerateRequest
func (b *GenerateBody) toRequest() (lotofacil.GenerateRequest, error) {
	var req lotofacil.GenerateRequest

	fields := [...]struct {
		name, text string
	}{{"draw1", b.Draw1}, {"draw2", b.Draw2}, {"draw3", b.Draw3}}
	for i, f := range fields {
		d, err := lotofacil.ParseDraw(f.name, f.text)
		if err != nil {
			return req, err
		}
		req.Draws[i] = d
	}

	current, err := lotofacil.ParseDraw("current_result", b.CurrentResult)
	if err != nil {
		return req, err
	}
	mode, err := lotofacil.ParseMode(b.Mode)
	if err != nil {
		return req, err
	}

	req.Current = current
	req.Mode = mode
	req.Quantity = b.Quantity
	req.Exclude = lotofacil.NewNumberSet(b.Exclude...)
	req.Include = lotofacil.NewNumberSet(b.Include...)
	return req, nil
}

// ActivateBody is the JSON body of POST /api/activate
type ActivateBody struct {
	Code string `json:"code"`
}

// Handler serves the /api routes
type Handler struct {
	svc lotofacil.GameService
}

// NewHandler creates a handler over svc
func NewHandler(svc lotofacil.GameService) *Handler { return &Handler{svc: svc} }

// Status handles GET /api/status
func (h *Handler) Status(c *gin.Context) {
	info, err := h.svc.Status(c.Request.Context(), UserID(c))
	if err != nil {
		RespondLotoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": info})
}

// Generate handles POST /api/generate
func (h *Handler) Generate(c *gin.Context) {
	var body GenerateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "invalid JSON body")
		return
	}

	// quantity is optional and defaults to one game
	if body.Quantity == 0 {
		body.Quantity = lotofacil.MinQuantity
	}
	if err := lotofacil.ValidateQuantity(body.Quantity); err != nil {
		RespondLotoError(c, err)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		RespondLotoError(c, err)
		return
	}

	resp, err := h.svc.Generate(c.Request.Context(), UserID(c), req)
	if err != nil {
		RespondLotoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"history_id":      resp.HistoryID,
		"games":           resp.Games,
		"statistics":      resp.Statistics,
		"count":           resp.Count,
		"max_generations": resp.MaxGenerations,
	})
}

// Activate handles POST /api/activate
func (h *Handler) Activate(c *gin.Context) {
	var body ActivateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "invalid JSON body")
		return
	}

	result, err := h.svc.ActivateCode(c.Request.Context(), UserID(c), body.Code)
	if err != nil {
		RespondLotoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "activation": result})
}

// History handles GET /api/history
func (h *Handler) History(c *gin.Context) {
	entries, err := h.svc.History(c.Request.Context(), UserID(c))
	if err != nil {
		RespondLotoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

// ClearHistory handles DELETE /api/history
func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.svc.ClearHistory(c.Request.Context(), UserID(c)); err != nil {
		RespondLotoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Health handles GET /healthz
func Health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				status["status"] = "degraded"
				status["error"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
