package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/binroute/internal/core/domain"
)

const sessionCookie = "binroute_session"

// loginPageFor maps a role to the login page a browser should be sent to.
func loginPageFor(role string) string {
	if role == domain.RoleWasteCollector {
		return "/waste-collector-login"
	}
	return "/admin-login"
}

// SessionMiddleware resolves the session cookie into a domain.Session and
// stores it in Fiber locals. Requests without a valid session pass through
// unauthenticated; role gates decide what to do about that.
func SessionMiddleware(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookie)
		if token == "" {
			return c.Next()
		}
		sess, err := deps.Auth.Resolve(c.Context(), token)
		if err == nil && sess != nil {
			c.Locals("session", sess)
		}
		return c.Next()
	}
}

// SessionFromCtx returns the resolved session for this request, or nil.
func SessionFromCtx(c *fiber.Ctx) *domain.Session {
	sess, _ := c.Locals("session").(*domain.Session)
	return sess
}

// RequireRole redirects requests without a session of the given role to the
// matching login page.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFromCtx(c)
		if sess == nil || sess.Role != role {
			return c.Redirect(loginPageFor(role), fiber.StatusFound)
		}
		return c.Next()
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SignUpHandler registers a new account.
func SignUpHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		err := deps.Auth.SignUp(c.Context(), strings.TrimSpace(req.Username), req.Password, req.Role)
		if err != nil {
			if errors.Is(err, domain.ErrUsernameTaken) {
				return errBadRequest(c, "username already taken")
			}
			return errBadRequest(c, err.Error())
		}

		return c.Status(201).JSON(fiber.Map{"success": true})
	}
}

// LoginHandler authenticates against a fixed role and sets the session cookie.
// Used for the role-specific login pages.
func LoginHandler(deps *Dependencies, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return doLogin(c, deps, req.Username, req.Password, role)
	}
}

// GenericLoginHandler authenticates with the role supplied in the body.
func GenericLoginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return doLogin(c, deps, req.Username, req.Password, req.Role)
	}
}

func doLogin(c *fiber.Ctx, deps *Dependencies, username, password, role string) error {
	sess, err := deps.Auth.Login(c.Context(), username, password, role)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return errUnauthorized(c, "invalid username or password")
		}
		return errInternal(c, err.Error())
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(deps.Auth.SessionTTL()),
	})

	return c.JSON(fiber.Map{
		"success":  true,
		"username": sess.Username,
		"role":     sess.Role,
	})
}

// LogoutHandler deletes the session and clears the cookie.
func LogoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookie)
		if token != "" {
			_ = deps.Auth.Logout(c.Context(), token)
		}
		c.ClearCookie(sessionCookie)
		return c.JSON(fiber.Map{"success": true})
	}
}

// DashboardHandler returns a minimal acknowledgement for the role-gated
// dashboard routes. The actual presentation lives in the frontend.
func DashboardHandler(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFromCtx(c)
		return c.JSON(fiber.Map{
			"dashboard": role,
			"username":  sess.Username,
		})
	}
}
