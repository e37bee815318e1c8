package handler

import (
    "errors"
    "net/http"
    "net/mail"
    "strings"
    "time"
    "unicode/utf8"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-api/internal/auth"
    "github.com/iliyamo/blog-api/internal/config"
    "github.com/iliyamo/blog-api/internal/model"
    "github.com/iliyamo/blog-api/internal/queue"
    "github.com/iliyamo/blog-api/internal/repository"
    "github.com/iliyamo/blog-api/internal/service"
    "github.com/iliyamo/blog-api/internal/utils"
)

// AuthHandler bundles dependencies for account endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Users    *repository.UserRepo
    Codec    *auth.Codec
    Notifier service.Notifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, codec *auth.Codec, n service.Notifier) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Codec: codec, Notifier: n}
}

// ----- DTOs -----

type signupReq struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type userPart struct {
    ID            uint64 `json:"id"`
    Username      string `json:"username"`
    Email         string `json:"email"`
    Role          string `json:"role"`
    IsAdmin       bool   `json:"is_admin"`
    EmailVerified bool   `json:"email_verified"`
}
type authResp struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
    User    userPart  `json:"user"`
}

func userPartOf(u model.User) userPart {
    return userPart{
        ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role,
        IsAdmin: u.IsAdmin(), EmailVerified: u.EmailVerified,
    }
}

func (r *signupReq) validate() string {
    r.Username = strings.TrimSpace(r.Username)
    r.Email = strings.ToLower(strings.TrimSpace(r.Email))
    if n := utf8.RuneCountInString(r.Username); n < 3 || n > 25 {
        return "username must be between 3 and 25 characters"
    }
    if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
        return "invalid email"
    }
    if len(r.Password) < 6 {
        return "password must be at least 6 characters"
    }
    return ""
}

// Signup: create user, send the verification link and return a token
// immediately.  The account can browse and like right away; commenting
// waits for the e-mail to be confirmed.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    role := model.RoleRegular
    if h.Cfg.AdminEmail != "" && req.Email == h.Cfg.AdminEmail {
        role = model.RoleAdmin
    }

    verification, err := utils.NewVerificationToken(h.Cfg.VerificationTTL)
    if err != nil {
        return serverError(c, "issue verification token failed", err)
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    uid, err := h.Users.Create(ctx, repository.NewUser{
        Username: req.Username, Email: req.Email, Password: req.Password,
        Role: role, Verification: &verification,
    }, h.Cfg.BcryptCost)
    switch {
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    case errors.Is(err, repository.ErrUsernameExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
    case err != nil:
        return serverError(c, "create user failed", err)
    }

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return serverError(c, "load user failed", err)
    }
    tok, err := h.Codec.Issue(uid, h.Cfg.TokenTTL)
    if err != nil {
        return serverError(c, "issue token failed", err)
    }

    h.notify(c, u, verification.Raw)

    return c.JSON(http.StatusCreated, authResp{Token: tok.Value, Expires: tok.ExpiresAt, User: userPartOf(u)})
}

// Login: verify credentials and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return serverError(c, "query failed", err)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    tok, err := h.Codec.Issue(u.ID, h.Cfg.TokenTTL)
    if err != nil {
        return serverError(c, "issue token failed", err)
    }
    return c.JSON(http.StatusOK, authResp{Token: tok.Value, Expires: tok.ExpiresAt, User: userPartOf(u)})
}

// Logout: tokens are stateless and there is no revocation list, so the
// client simply discards its token.
func (h *AuthHandler) Logout(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out; discard the token on the client"})
}

// VerifyEmail exchanges the one-time token from the e-mail link.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
    raw := strings.TrimSpace(c.QueryParam("token"))
    if raw == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    u, err := h.Users.VerifyEmail(ctx, raw, time.Now().UTC())
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired verification token"})
        }
        return serverError(c, "verify email failed", err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "email verified", "user": userPartOf(u)})
}

// ResendVerification replaces the outstanding token and mails a new link.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
    id, err := currentIdentity(c)
    if id == nil {
        return err
    }
    if id.EmailVerified {
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already verified"})
    }

    verification, err := utils.NewVerificationToken(h.Cfg.VerificationTTL)
    if err != nil {
        return serverError(c, "issue verification token failed", err)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    if err := h.Users.SetVerificationToken(ctx, id.ID, verification); err != nil {
        switch {
        case errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already verified"})
        case errors.Is(err, repository.ErrNotFound):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.Message(auth.ErrIdentityNotFound)})
        }
        return serverError(c, "store verification token failed", err)
    }
    u, err := h.Users.GetByID(ctx, id.ID)
    if err != nil {
        return serverError(c, "load user failed", err)
    }
    h.notify(c, u, verification.Raw)
    return c.JSON(http.StatusOK, echo.Map{"message": "verification email sent"})
}

// Me returns the current account.
func (h *AuthHandler) Me(c echo.Context) error {
    id, err := currentIdentity(c)
    if id == nil {
        return err
    }
    return c.JSON(http.StatusOK, userPart{
        ID: id.ID, Username: id.Username, Email: id.Email, Role: id.Role,
        IsAdmin: id.IsAdmin(), EmailVerified: id.EmailVerified,
    })
}

// notify hands the verification link to the notifier.  Failures are
// logged; the account exists either way and the user can ask for a resend.
func (h *AuthHandler) notify(c echo.Context, u model.User, rawToken string) {
    if h.Notifier == nil {
        return
    }
    ev := queue.UserRegisteredEvent{
        UserID:      u.ID,
        Username:    u.Username,
        Email:       u.Email,
        Token:       rawToken,
        RequestedAt: time.Now().UTC().Format(time.RFC3339),
    }
    ctx, cancel := dbCtx(c)
    defer cancel()
    if err := h.Notifier.NotifyRegistered(ctx, ev); err != nil {
        c.Logger().Warnf("verification notification for user %d failed: %v", u.ID, err)
    }
}
