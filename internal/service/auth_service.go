package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/notsocj/SmartExam/internal/config"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/notsocj/SmartExam/internal/repository"
	"github.com/notsocj/SmartExam/internal/session"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// TokenType distinguishes student vs admin tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeAdmin   TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType  `json:"token_type"`
	UserID    int        `json:"user_id"`
	Role      model.Role `json:"role"`
}

// AuthService handles authentication, JWT, and login session management.
// Students get single-device sessions: a fresh login replaces the previous
// device's session and discards any attempt that session left behind.
type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	attempts session.Store
	rdb      *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, attempts session.Store, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, attempts: attempts, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register creates a student account.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Name:     req.Name,
		Username: req.Username,
		Role:     model.RoleStudent,
	}
	if req.StudentID != "" {
		u.StudentID = &req.StudentID
	}
	u.PasswordHash = hash

	if err := s.userRepo.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and issues a JWT. For students the new session
// replaces any existing one, and a stale attempt from the previous session
// is discarded so the student starts from a clean state.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, string, error) {
	u, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if err := s.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, "", err
	}

	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: u.ID,
		Role:   u.Role,
	}
	if u.Role == model.RoleAdmin {
		claims.TokenType = TokenTypeAdmin
	} else {
		claims.TokenType = TokenTypeStudent
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	if u.Role == model.RoleStudent {
		// Register the session; the previous device's JTI stops matching.
		if err := s.rdb.Set(ctx, config.CacheKey.StudentLoginKey(u.ID), jti, s.cfg.JWTExpiry).Err(); err != nil {
			return nil, "", fmt.Errorf("store session: %w", err)
		}
		if err := s.attempts.Clear(ctx, u.ID); err != nil {
			return nil, "", fmt.Errorf("clear stale attempt: %w", err)
		}
	}

	return u, signed, nil
}

// Logout destroys the student's login session and any in-flight attempt.
func (s *AuthService) Logout(ctx context.Context, userID int) error {
	if err := s.rdb.Del(ctx, config.CacheKey.StudentLoginKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return s.attempts.Clear(ctx, userID)
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateStudentSession checks that the token's JTI matches the active
// session in Redis. A mismatch means the account logged in elsewhere.
func (s *AuthService) ValidateStudentSession(ctx context.Context, userID int, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.StudentLoginKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
