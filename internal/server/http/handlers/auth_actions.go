package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/webpot/internal/domain/errors"
	"github.com/polkiloo/webpot/internal/domain/model"
	"github.com/polkiloo/webpot/internal/server/http/dto"
	"github.com/polkiloo/webpot/internal/server/http/middleware"
	"github.com/polkiloo/webpot/internal/usecase"
)

func (h *ActionHandler) register(c *gin.Context, call actionCall) {
	var req dto.RegisterRequest
	if !h.bind(c, call, &req) {
		return
	}
	usr, token, err := h.facade.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.signedIn(c, usr, token, "registration successful")
}

func (h *ActionHandler) login(c *gin.Context, call actionCall) {
	var req dto.LoginRequest
	if !h.bind(c, call, &req) {
		return
	}
	usr, token, err := h.facade.Login(c.Request.Context(), req.Identity(), req.Password)
	if errors.Is(err, domainErrors.ErrOTPRequired) {
		resp := dto.AuthResponse{Response: dto.Failure(dto.StatusOTPRequired, "enter the code we sent you")}
		if usr != nil {
			resp.Email = usr.Email
		}
		c.JSON(http.StatusAccepted, resp)
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.signedIn(c, usr, token, "login successful")
}

func (h *ActionHandler) verifyLoginOTP(c *gin.Context, call actionCall) {
	var req dto.VerifyOTPRequest
	if !h.bind(c, call, &req) {
		return
	}
	usr, token, err := h.facade.VerifyLoginOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.signedIn(c, usr, token, "login successful")
}

func (h *ActionHandler) requestReset(c *gin.Context, call actionCall) {
	var req dto.ResetRequest
	if !h.bind(c, call, &req) {
		return
	}
	if err := h.facade.RequestReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success("reset code sent"))
}

func (h *ActionHandler) verifyReset(c *gin.Context, call actionCall) {
	var req dto.VerifyResetRequest
	if !h.bind(c, call, &req) {
		return
	}
	if err := h.facade.ConfirmReset(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.Success("password updated"))
}

func (h *ActionHandler) adminLogin(c *gin.Context, call actionCall) {
	var req dto.LoginRequest
	if !h.bind(c, call, &req) {
		return
	}
	usr, token, err := h.facade.AdminLogin(c.Request.Context(), req.Identity(), req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.signedIn(c, usr, token, "admin login successful")
}

func (h *ActionHandler) signedIn(c *gin.Context, usr *model.User, token, message string) {
	middleware.SetAuthCookie(c, token)
	resp := dto.AuthResponse{Response: dto.Success(message), Token: token}
	if usr != nil {
		u := dto.NewUserResponse(*usr)
		resp.User = &u
		resp.Email = usr.Email
	}
	c.JSON(http.StatusOK, resp)
}
