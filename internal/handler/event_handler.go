package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"Lee_Meetup/internal/model"
	"Lee_Meetup/internal/service"
)

type EventHandler struct {
	svc *service.EventService
}

// EventCreateReq maxAttendees 允许数字、数字字符串或留空
type EventCreateReq struct {
	Title        string           `json:"title" binding:"required"`
	Description  string           `json:"description" binding:"required"`
	Date         string           `json:"date" binding:"required"`
	Time         string           `json:"time" binding:"required"`
	Location     string           `json:"location" binding:"required"`
	Category     string           `json:"category" binding:"required"`
	MaxAttendees service.Capacity `json:"maxAttendees"`
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// List 支持 ?category= 精确匹配与 ?search= 标题/描述模糊匹配
func (h *EventHandler) List(c *gin.Context) {
	events := slices.Collect(h.svc.List(service.EventFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}))
	if events == nil {
		events = []*model.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req EventCreateReq
	if !bindJSON(c, &req, msgRequiredFields) {
		return
	}

	event, err := h.svc.Create(c.Request.Context(), currentUser(c), service.EventFields{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Time:         req.Time,
		Location:     req.Location,
		Category:     req.Category,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) RSVP(c *gin.Context) {
	event, err := h.svc.Register(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RSVP successful", "event": event})
}

func (h *EventHandler) CancelRSVP(c *gin.Context) {
	event, err := h.svc.Cancel(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RSVP cancelled", "event": event})
}
