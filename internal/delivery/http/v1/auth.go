package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uptask/uptask-server/internal/services"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.auth.Register(c, services.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *handlerImpl) HandleConfirm(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		abort(c, newBadRequestError("no token provided"))
		return
	}

	err := h.auth.Confirm(c, token)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to confirm account")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "account confirmed"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

type loginResponse struct {
	userResponse
	Token          string    `json:"token"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			abort(c, newNotFoundError(services.ErrUserNotFound.Error()))
		case errors.Is(err, services.ErrUserNotConfirmed):
			abort(c, newForbiddenError(services.ErrUserNotConfirmed.Error()))
		case errors.Is(err, services.ErrUserPasswordMismatch):
			abort(c, newUnauthorizedError(services.ErrUserPasswordMismatch.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		userResponse:   newUserResponse(result.User),
		Token:          result.Token,
		TokenExpiresAt: result.TokenExpiresAt,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

func (h *handlerImpl) HandleForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.auth.ForgotPassword(c, req.Email)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to start password reset")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "reset instructions sent"})
}

func (h *handlerImpl) HandleCheckResetToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		abort(c, newBadRequestError("no token provided"))
		return
	}

	err := h.auth.CheckResetToken(c, token)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to check reset token")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "valid token"})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=255"`
}

func (h *handlerImpl) HandleResetPassword(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		abort(c, newBadRequestError("no token provided"))
		return
	}

	var req resetPasswordRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err = h.auth.ResetPassword(c, token, req.Password)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to reset password")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "password updated"})
}

func (h *handlerImpl) HandleProfile(c *gin.Context) {
	userID, ok := h.mustUserID(c)
	if !ok {
		return
	}

	user, err := h.auth.UserByID(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to load profile")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
