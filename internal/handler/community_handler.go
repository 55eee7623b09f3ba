package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lee_Meetup/internal/service"
)

const msgRequiredFields = "Please provide all required fields"

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Location    string `json:"location" binding:"required"`
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List())
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if !bindJSON(c, &req, msgRequiredFields) {
		return
	}

	community, err := h.svc.Create(c.Request.Context(), currentUser(c), service.CommunityFields{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, community)
}

func (h *CommunityHandler) Join(c *gin.Context) {
	community, err := h.svc.Join(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined community", "community": community})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	community, err := h.svc.Leave(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left community", "community": community})
}
