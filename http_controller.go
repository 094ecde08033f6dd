package users

import (
	"errors"
	"net/http"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterUserRoutes mounts the account endpoints. Registration and login
// are public; every other route re-authenticates the caller per request.
func RegisterUserRoutes[T any](app router.Router[T], service *Accounts, cfg Config, opts ...UsersControllerOption) {
	controller := NewUsersController(append([]UsersControllerOption{
		WithControllerService(service),
		WithControllerContextKey(cfg.GetContextKey()),
	}, opts...)...)

	protected := service.ProtectedRoute(cfg, controller.ErrorHandler)

	app.Post("/users", controller.Create).SetName("users.create")
	app.Post("/users/login", controller.Login).SetName("users.login")

	app.Get("/users/status", controller.AuthStatus, protected).SetName("users.status")
	app.Get("/users", controller.Index, protected).SetName("users.index")
	app.Get("/users/:id", controller.Show, protected).SetName("users.show")
	app.Patch("/users/:id", controller.Update, protected).SetName("users.update")
	app.Delete("/users/:id", controller.Destroy, protected).SetName("users.destroy")
}

type UsersController struct {
	Debug        bool
	Logger       Logger
	Service      AccountService
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Service == nil {
		panic("Missing AccountService in users controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = HTTPErrorHandler(c.Logger)
	}

	return c
}

func WithControllerService(service AccountService) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Service = service
		return c
	}
}

func WithControllerLogger(logger Logger) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerContextKey(key string) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithControllerErrorHandler(handler router.ErrorHandler) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.ErrorHandler = handler
		return c
	}
}

func WithControllerDebug(debug bool) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Debug = debug
		return c
	}
}

// SessionResponse is the payload returned by login and registration.
type SessionResponse struct {
	User  *UserRecord `json:"user"`
	Token string      `json:"token"`
}

// CreateUserRequest payload
type CreateUserRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(
				&r.Password,
				validation.Required,
				validation.Length(6, 50),
				validation.By(ValidatePasswordStrength),
			),
		)
	}, "Invalid registration payload")
}

func (a *UsersController) Create(ctx router.Context) error {
	payload := new(CreateUserRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("create user parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("create user validate payload: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("registering user %s", print.MaybePrettyJSON(payload))
	}

	record, err := a.Service.Register(ctx.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("create user error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	status, err := a.Service.AuthStatus(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, SessionResponse{
		User:  record,
		Token: status.Token,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login request payload")
}

func (a *UsersController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	record, token, err := a.Service.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, SessionResponse{
		User:  record,
		Token: token,
	})
}

// AuthStatus reissues a token for the account behind the current request.
func (a *UsersController) AuthStatus(ctx router.Context) error {
	record, ok := GetRouterUser(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenNotValid)
	}

	status, err := a.Service.AuthStatus(ctx.Context(), record)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, status)
}

func (a *UsersController) Index(ctx router.Context) error {
	records, err := a.Service.List(ctx.Context())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, records)
}

func (a *UsersController) Show(ctx router.Context) error {
	record, err := a.Service.GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

// UpdateUserRequest payload; empty fields are left untouched.
type UpdateUserRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules. Rules only apply to fields that
// carry a value.
func (r UpdateUserRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Length(3, 100)),
			validation.Field(&r.Email, is.Email),
			validation.Field(
				&r.Password,
				validation.Length(6, 50),
				validation.By(ValidatePasswordStrength),
			),
		)
	}, "Invalid update payload")
}

func (a *UsersController) Update(ctx router.Context) error {
	payload := new(UpdateUserRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("update user parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Error parsing body"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	record, err := a.Service.Update(ctx.Context(), ctx.Param("id"), UpdateUserInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

func (a *UsersController) Destroy(ctx router.Context) error {
	record, err := a.Service.Deactivate(ctx.Context(), ctx.Param("id"))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

// ValidatePasswordStrength requires an upper case letter, a lower case
// letter, and a digit or symbol. Empty values are handled by Required.
func ValidatePasswordStrength(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	var upper, lower, other bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			other = true
		}
	}

	if !upper || !lower || !other {
		return errors.New("must contain an upper case letter, a lower case letter, and a number or symbol")
	}

	return nil
}
