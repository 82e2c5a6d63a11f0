package handler

import (
	"errors"
	"io"
	"net/http"

	"storefront-identity/internal/gate"
	"storefront-identity/internal/notification"
	"storefront-identity/internal/usecase/account"
	"storefront-identity/pkg/utils"

	"github.com/gin-gonic/gin"
)

const adminKeyParam = "adminKey"

// MailOutbox exposes captured reset emails to the debug preview route.
type MailOutbox interface {
	List() []*notification.CapturedMessage
	Get(id string) (*notification.CapturedMessage, bool)
}

type AccountHandler struct {
	service *account.Service
	outbox  MailOutbox
}

// NewAccountHandler wires the account routes. outbox may be nil when mail is
// delivered through a real relay.
func NewAccountHandler(service *account.Service, outbox MailOutbox) *AccountHandler {
	return &AccountHandler{service: service, outbox: outbox}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/forgot-password", h.ForgotPassword)
	router.POST("/reset-password/:token", h.ResetPassword)

	router.POST("/promote", h.Promote)

	debug := router.Group("/debug")
	{
		debug.GET("/list", h.DebugList)
		debug.GET("/mail", h.DebugMailList)
		debug.GET("/mail/:id", h.DebugMail)
		debug.GET("/metrics", h.DebugMetrics)
	}
}

// RegisterAdminRoutes expects router to already require an admin session.
func (h *AccountHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/list", h.List)
	router.POST("", h.Create)
	router.DELETE("/:id", h.Delete)
}

// RegisterAccountRoutes serves reads and edits of a single account. router
// must admit the account's owner and admins only.
func (h *AccountHandler) RegisterAccountRoutes(router *gin.RouterGroup) {
	router.GET("/:id", h.Get)
	router.PUT("/:id", h.Update)
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	summary, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, utils.Response{
		Success: true,
		Message: "User registered successfully",
		User:    summary,
	})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	result, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, utils.Response{
		Success: true,
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req account.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reset token created and emailed if the account exists", nil)
}

func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req account.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password reset successful", nil)
}

// Promote accepts an empty body so a header-only request still reaches the
// gate. A malformed body is checked against the header secret before it is
// rejected.
func (h *AccountHandler) Promote(c *gin.Context) {
	var req account.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		if err := h.service.AuthorizePrivileged(c.Request.Context(), c.GetHeader(gate.HeaderName), "promote"); err != nil {
			respondWithError(c, err)
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	secret := c.GetHeader(gate.HeaderName)
	if secret == "" {
		secret = req.AdminKey
	}

	if err := h.service.Promote(c.Request.Context(), secret, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User promoted to admin", nil)
}

func (h *AccountHandler) DebugList(c *gin.Context) {
	accounts, err := h.service.DebugListAccounts(c.Request.Context(), presentedSecret(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", accounts)
}

// DebugMailList returns the captured reset emails, newest first.
func (h *AccountHandler) DebugMailList(c *gin.Context) {
	if err := h.service.AuthorizePrivileged(c.Request.Context(), presentedSecret(c), "debug_mail"); err != nil {
		respondWithError(c, err)
		return
	}
	if h.outbox == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Mail capture is disabled")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", h.outbox.List())
}

// DebugMail serves a captured reset email, as HTML for browsers and as JSON
// otherwise.
func (h *AccountHandler) DebugMail(c *gin.Context) {
	if err := h.service.AuthorizePrivileged(c.Request.Context(), presentedSecret(c), "debug_mail"); err != nil {
		respondWithError(c, err)
		return
	}
	if h.outbox == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Mail capture is disabled")
		return
	}

	msg, ok := h.outbox.Get(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Mail not found")
		return
	}

	if msg.HTML != "" && c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(msg.HTML))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", msg)
}

func (h *AccountHandler) DebugMetrics(c *gin.Context) {
	if err := h.service.AuthorizePrivileged(c.Request.Context(), presentedSecret(c), "debug_metrics"); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", h.service.Metrics())
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", accounts)
}

func (h *AccountHandler) Get(c *gin.Context) {
	summary, err := h.service.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, utils.Response{
		Success: true,
		User:    summary,
	})
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	summary, err := h.service.AdminCreate(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, utils.Response{
		Success: true,
		Message: "User added",
		User:    summary,
	})
}

func (h *AccountHandler) Update(c *gin.Context) {
	var req account.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	summary, err := h.service.UpdateAccount(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.JSONResponse(c, http.StatusOK, utils.Response{
		Success: true,
		Message: "User updated successfully",
		Data:    summary,
		User:    summary,
	})
}

func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.service.AdminDelete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}

// presentedSecret reads the shared secret from the header, falling back to
// the adminKey query parameter.
func presentedSecret(c *gin.Context) string {
	if secret := c.GetHeader(gate.HeaderName); secret != "" {
		return secret
	}
	return c.Query(adminKeyParam)
}
