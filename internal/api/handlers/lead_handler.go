package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/turfline/leadchat/internal/services"
)

// LeadHandler serves the admin dashboard's read-only view of captured leads.
type LeadHandler struct {
	svc services.LeadService
}

func NewLeadHandler(svc services.LeadService) *LeadHandler {
	return &LeadHandler{svc: svc}
}

func (h *LeadHandler) List(c *gin.Context) {
	limit := 50
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	offset := 0
	if s := c.Query("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			offset = n
		}
	}
	minScore := 0
	if s := c.Query("min_score"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			minScore = n
		}
	}

	rows, err := h.svc.List(c.Request.Context(), minScore, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": rows,
		"count": len(rows),
	})
}

func (h *LeadHandler) Get(c *gin.Context) {
	row, err := h.svc.GetBySessionID(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

func (h *LeadHandler) Conversation(c *gin.Context) {
	limit := 50
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := h.svc.Conversation(c.Request.Context(), c.Param("session_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": rows,
		"count":    len(rows),
	})
}
