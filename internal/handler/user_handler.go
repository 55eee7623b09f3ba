package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lee_Meetup/internal/model"
	"Lee_Meetup/internal/pkg"
	"Lee_Meetup/internal/service"
)

const (
	msgRegisterRequired = "Name, email, and password are required"
	msgLoginRequired    = "Email and password are required"
)

type UserHandler struct {
	svc *service.AuthService
}

// RegisterReq 注册请求体
type RegisterReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResp struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register 注册接口
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if !bindJSON(c, &req, msgRegisterRequired) {
		return
	}

	token, user, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResp{Token: token, User: user})
}

// Login 登录接口
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if !bindJSON(c, &req, msgLoginRequired) {
		return
	}

	token, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResp{Token: token, User: user})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		respondError(c, pkg.Auth("Authentication required"))
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
