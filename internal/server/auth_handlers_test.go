package server

import (
	"net/http"
	"testing"

	"leanvote/internal/config"
	"leanvote/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthTestApp(users *MockUserRepository) *fiber.App {
	app := fiber.New()
	s := &Server{
		config:   &config.Config{JWTSecret: "test-secret"},
		userRepo: users,
	}
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/login", s.Login)
	return app
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(users *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "newuser",
				"email":    "new@example.com",
				"password": "Str0ngPassw0rd!",
			},
			mockSetup: func(users *MockUserRepository) {
				users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
				users.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"username": "newuser",
				"email":    "taken@example.com",
				"password": "Str0ngPassw0rd!",
			},
			mockSetup: func(users *MockUserRepository) {
				users.On("GetByEmail", mock.Anything, "taken@example.com").
					Return(&models.User{ID: 5, Email: "taken@example.com"}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Weak Password",
			body: map[string]string{
				"username": "newuser",
				"email":    "new@example.com",
				"password": "short",
			},
			mockSetup:      func(users *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Username",
			body: map[string]string{
				"username": "-bad-",
				"email":    "new@example.com",
				"password": "Str0ngPassw0rd!",
			},
			mockSetup:      func(users *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"username": "newuser",
			},
			mockSetup:      func(users *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tt.mockSetup(users)
			app := newAuthTestApp(users)

			resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/signup", tt.body))
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestSignupCreatesVoter(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.UserType == models.UserTypeVoter && u.Password != "Str0ngPassw0rd!"
	})).Return(nil)

	app := newAuthTestApp(users)
	resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/signup", map[string]string{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "Str0ngPassw0rd!",
	}))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	users.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Str0ngPassw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: 5, Username: "alice", Email: "alice@example.com", Password: string(hashed)}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		app := newAuthTestApp(users)
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "Str0ngPassw0rd!",
		}))
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		app := newAuthTestApp(users)
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong-password",
		}))
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		app := newAuthTestApp(users)
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"email":    "ghost@example.com",
			"password": "Str0ngPassw0rd!",
		}))
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGenerateToken(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: "test-secret"}}

	tokenString, err := s.generateToken(42, "alice")
	require.NoError(t, err)

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "leanvote-api", claims["iss"])
	assert.Equal(t, "leanvote-client", claims["aud"])
	assert.NotEmpty(t, claims["jti"])
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	s := &Server{config: &config.Config{}}
	_, err := s.generateToken(42, "alice")
	assert.Error(t, err)
}
