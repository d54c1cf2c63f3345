// Package web serves the browser login and registration forms. The login
// form carries the activation code field and is pre-filled from the link in
// the welcome mail.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/dmitrijs2005/activationgate/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SessionCookieName holds the access token after a browser login.
const SessionCookieName = "access_token"

// UserService is the subset of services.UserService used by the forms.
type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.Session, error)
}

type Handler struct {
	users     UserService
	siteName  string
	cookieTTL time.Duration
	logger    logging.Logger
}

func NewHandler(us UserService, siteName string, cookieTTL time.Duration, l logging.Logger) *Handler {
	return &Handler{users: us, siteName: siteName, cookieTTL: cookieTTL, logger: l.With("module", "web")}
}

// Router mounts the routes behind CORS for allowedOrigins.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/register", h.registerForm)
	r.Post("/register", h.register)

	return r
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, code int, data pageData) {
	data.SiteName = h.siteName
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := pageTmpl.Execute(w, data); err != nil {
		h.logger.Error(r.Context(), "template render failed", "error", err)
	}
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageData{
		Title:          "Log In",
		Form:           "login",
		ActivationCode: r.URL.Query().Get(common.ActivationCodeField),
	})
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, activation.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, activation.ErrUnknownUser),
		errors.Is(err, activation.ErrActivationCodeMismatch),
		errors.Is(err, services.ErrIncorrectPassword):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func loginMessage(err error) string {
	if errors.Is(err, services.ErrIncorrectPassword) {
		return "ERROR: The password you entered is incorrect."
	}
	return activation.UserMessage(err)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	// The code is compared byte for byte, as on the other transports.
	req := services.LoginRequest{
		UserName:       strings.TrimSpace(r.PostForm.Get("log")),
		Password:       r.PostForm.Get("pwd"),
		ActivationCode: r.PostForm.Get(common.ActivationCodeField),
	}

	sess, err := h.users.Login(r.Context(), req)
	if err != nil {
		h.logger.Info(r.Context(), "login rejected", "username", req.UserName, "reason", err.Error())
		h.render(w, r, loginStatus(err), pageData{
			Title:          "Log In",
			Form:           "login",
			Error:          loginMessage(err),
			Login:          req.UserName,
			ActivationCode: req.ActivationCode,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.AccessToken,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	notice := "You are now logged in."
	if sess.Activated {
		notice = "Your account is now activated. You are logged in."
	}
	h.render(w, r, http.StatusOK, pageData{Title: "Welcome", Notice: notice})
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageData{Title: "Registration Form", Form: "register"})
}

type registerJSON struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func registerStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "ERROR: This username is already registered. Please choose another one."
	default:
		return http.StatusInternalServerError, "ERROR: Registration failed."
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest

	if isJSON(r) {
		var body registerJSON
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		req = services.RegisterRequest{UserName: body.Username, Email: body.Email, Password: body.Password}

		u, err := h.users.Register(r.Context(), req)
		if err != nil {
			code, msg := registerStatus(err)
			writeJSON(w, code, map[string]string{"error": msg})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"user_id": u.ID})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	req = services.RegisterRequest{
		UserName: r.PostForm.Get("user_login"),
		Email:    r.PostForm.Get("user_email"),
		Password: r.PostForm.Get("user_pass"),
	}

	if _, err := h.users.Register(r.Context(), req); err != nil {
		code, msg := registerStatus(err)
		h.render(w, r, code, pageData{
			Title: "Registration Form", Form: "register", Error: msg,
			Login: req.UserName, Email: req.Email,
		})
		return
	}

	h.render(w, r, http.StatusOK, pageData{
		Title:  "Log In",
		Form:   "login",
		Notice: "Registration complete. Please check your email for your activation code.",
		Login:  req.UserName,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
