package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/wms/backend/internal/application/identity"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
//
//	@ID				login
//	@Summary		Authenticate with username and password
//	@Description	Returns an access and refresh token pair with the user profile
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identityapp.LoginInput	true	"Credentials"
//	@Success		200		{object}	dto.Response{data=identityapp.LoginResult}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		429		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh godoc
//
//	@ID			refreshToken
//	@Summary	Rotate a refresh token into a new token pair
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		identityapp.RefreshTokenInput	true	"Refresh token"
//	@Success	200		{object}	dto.Response{data=identityapp.TokenResult}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Router		/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshTokenInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout revokes the presented access token and, when sent, the refresh token
//
//	@ID			logout
//	@Summary	Revoke the current access token and, when sent, the refresh token
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		identityapp.LogoutInput	false	"Refresh token to revoke"
//	@Success	200		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req identityapp.LogoutInput
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	req.AccessClaims = middleware.GetClaims(c)

	if err := h.authService.Logout(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out"})
}

// Me returns the current user
//
//	@ID			getCurrentUser
//	@Summary	Return the authenticated user
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=identityapp.UserInfo}
//	@Failure	401	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword changes the caller's password and returns a fresh token pair
//
//	@ID				changePassword
//	@Summary		Change the password and invalidate older tokens
//	@Description	Returns a fresh token pair; tokens issued before the change stop working
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identityapp.ChangePasswordInput	true	"Old and new password"
//	@Success		200		{object}	dto.Response{data=identityapp.TokenResult}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordInput
	if !h.bindJSON(c, &req) {
		return
	}

	tokens, err := h.authService.ChangePassword(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}
