package auth

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AuthControllerRoutes are the paths the controller mounts.
type AuthControllerRoutes struct {
	Register  string
	Login     string
	Protected string
}

// AuthController exposes the registration, login and protected-resource
// endpoints over HTTP. Each domain error maps to exactly one status and
// message pair; handlers never build ad hoc error strings.
type AuthController struct {
	Debug      bool
	Logger     Logger
	Auther     Authenticator
	Routes     *AuthControllerRoutes
	ContextKey string
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Register:  "/auth/register",
			Login:     "/auth/login",
			Protected: "/protected",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	a.Logger = logger
	return a
}

// RegisterAuthRoutes mounts the controller. The protected route is gated
// by the given middleware; the auth routes are open.
func RegisterAuthRoutes(app *fiber.App, gate fiber.Handler, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegistrationCreate)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Get(controller.Routes.Protected, gate, controller.ProtectedShow)

	return controller
}

// RegistrationCreatePayload is the registration request body.
type RegistrationCreatePayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone_number" json:"phone_number"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required),
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, ErrMissingFields.Message)
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, ErrMissingFields.Message)
}

// IdentitySummary is the client-facing identity projection. It never
// carries the password digest.
type IdentitySummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, ErrMissingFields)
	}

	if verr := payload.Validate(); verr != nil {
		return a.renderError(c, verr.WithCode(errors.CodeBadRequest))
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	user, err := a.Auther.Register(c.UserContext(), RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	})
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user": IdentitySummary{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.renderError(c, ErrMissingFields)
	}

	if verr := payload.Validate(); verr != nil {
		return a.renderError(c, verr.WithCode(errors.CodeBadRequest))
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Logged in successfully",
		"token":   token,
	})
}

// ProtectedShow answers with the verified claims the gate attached.
func (a *AuthController) ProtectedShow(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		// The gate always stores claims before letting a request through;
		// reaching this line means the route was mounted without it.
		return a.renderError(c, errors.New("protected route missing claims", errors.CategoryInternal).
			WithCode(errors.CodeInternal))
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "You have access to protected data!",
		"user":    claims,
	})
}

// renderError maps a domain error to its one external status/message pair.
// Internal faults are logged with detail and answered with a generic body.
func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		a.Logger.Error("internal fault serving %s: [%s] %s", c.Path(), richErr.Category, richErr.Message)
		return c.Status(status).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"message": richErr.Message,
	})
}
