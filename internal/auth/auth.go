// Package auth signs instructors in with a JWT session cookie and limits
// request rates per client address.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "Thermolab/internal/pkg/errors"
	"Thermolab/internal/pkg/logger"
	"Thermolab/internal/repo"
	"Thermolab/internal/validator"
)

const cookieName = "session_token"

type contextKey string

const instructorKey contextKey = "instructor"

// Instructor is the signed-in account carried in the request context.
type Instructor struct {
	ID    int
	Login string
}

// InstructorFrom returns the instructor set by AuthMiddleware.
func InstructorFrom(ctx context.Context) (Instructor, bool) {
	in, ok := ctx.Value(instructorKey).(Instructor)
	return in, ok
}

type Authenv struct {
	JWTkey []byte
	Expiry time.Duration
	Repo   repo.UserRepository
	// Insecure drops the Secure flag from the session cookie for plain
	// HTTP deployments.
	Insecure bool
}

type Loginrequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type Registerrequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CreateInstructor hashes password and stores a new account.
func CreateInstructor(ctx context.Context, r repo.UserRepository, login, email, password string) (int, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	return r.CreateUser(ctx, strings.TrimSpace(login), strings.TrimSpace(email), hash)
}

func (env *Authenv) parse(tokenString string) (Instructor, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return env.JWTkey, nil
	})
	if err != nil || !token.Valid {
		return Instructor{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Instructor{}, false
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id == 0 {
		return Instructor{}, false
	}
	login, ok := claims["login"].(string)
	if !ok || login == "" {
		return Instructor{}, false
	}
	return Instructor{ID: int(id), Login: login}, true
}

// AuthMiddleware rejects requests without a valid session cookie.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookieName)
		if err != nil {
			apperrors.WriteJSON(w, apperrors.Unauthorized("Login required"))
			return
		}
		in, ok := env.parse(cookie.Value)
		if !ok {
			apperrors.WriteJSON(w, apperrors.Unauthorized("Session expired or invalid"))
			return
		}
		ctx := context.WithValue(r.Context(), instructorKey, in)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (env *Authenv) token(userID int, login string) (string, time.Time, error) {
	expiry := env.Expiry
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	expires := time.Now().Add(expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"login":   login,
		"exp":     expires.Unix(),
	})
	s, err := token.SignedString(env.JWTkey)
	return s, expires, err
}

func (env *Authenv) addCookie(w http.ResponseWriter, userID int, login string) error {
	tokenString, expires, err := env.token(userID, login)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    tokenString,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   !env.Insecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// RegisterHandler lets a signed-in instructor add another account.
func (env *Authenv) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req Registerrequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if err := validator.Validate(req); err != nil {
		apperrors.WriteJSON(w, apperrors.Validation(err.Error()))
		return
	}

	id, err := CreateInstructor(r.Context(), env.Repo, req.Login, req.Email, req.Password)
	if err != nil {
		logger.Error("create instructor failed", zap.String("login", req.Login), zap.Error(err))
		apperrors.WriteJSON(w, apperrors.Conflict("Instructor already exists or DB error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "id": id})
}

func (env *Authenv) AuthHandler(w http.ResponseWriter, r *http.Request) {
	var req Loginrequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.BadRequest("Invalid request payload"))
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if err := validator.Validate(req); err != nil {
		apperrors.WriteJSON(w, apperrors.Validation("Login and password required"))
		return
	}

	id, storedHash, err := env.Repo.GetBylogin(r.Context(), req.Login)
	if err != nil {
		logger.Error("instructor lookup failed", zap.String("login", req.Login), zap.Error(err))
		apperrors.WriteJSON(w, apperrors.Internal("DB error"))
		return
	}
	if id == 0 || bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)) != nil {
		apperrors.WriteJSON(w, apperrors.Unauthorized("Invalid login or password"))
		return
	}
	if err := env.addCookie(w, id, req.Login); err != nil {
		logger.Error("sign session token failed", zap.Error(err))
		apperrors.WriteJSON(w, apperrors.Internal("Could not create session"))
		return
	}
	logger.Info("instructor signed in", zap.String("login", req.Login))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// LogoutHandler expires the session cookie.
func (env *Authenv) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !env.Insecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
