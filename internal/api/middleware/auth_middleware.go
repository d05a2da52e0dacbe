package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BypassToken はBYPASS_AUTH有効時にWebSocketの認証メッセージで使える固定トークンです。
const BypassToken = "BYPASS_AUTH"

// BypassUserHeader はBYPASS_AUTH有効時にユーザーIDを指定するヘッダーです。
const BypassUserHeader = "X-User-ID"

var (
	ErrMissingToken  = errors.New("token is required")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("jwt secret is not configured")
)

type UserIDKey struct{}

// GetUserIDFromContext retrieves the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey{}).(string)
	return userID, ok
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey{}, userID)
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ValidateToken はHMAC署名のJWTを検証し、'sub' クレームのユーザーIDを返します。
// "Bearer " プレフィックスが付いていても構いません。
func ValidateToken(tokenString, jwtSecret string) (string, error) {
	if jwtSecret == "" {
		return "", ErrMissingSecret
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		return "", ErrMissingToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// アルゴリズムがHMACであることを確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	// ユーザーIDは 'sub' (Subject) クレームに入っている
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: missing 'sub' claim", ErrInvalidToken)
	}
	return userID, nil
}

// BypassUserID はBYPASS_AUTH有効時のユーザーIDを決めます。指定がなければランダムなUUIDです。
func BypassUserID(requested string) string {
	if requested != "" {
		return requested
	}
	return uuid.New().String()
}

// NewAuthMiddleware はAuthorizationヘッダーのJWTを検証し、ユーザーIDをContextに設定するミドルウェアを返します。
//
// Parameters:
//
//	jwtSecret  : HMAC署名の検証に使う秘密鍵
//	bypassAuth : trueなら検証をせず、X-User-IDヘッダーかランダムなIDを使う（テスト用）
func NewAuthMiddleware(jwtSecret string, bypassAuth bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypassAuth {
				userID := BypassUserID(r.Header.Get(BypassUserHeader))
				log.Printf("[AuthMiddleware] BYPASS_AUTH enabled, using user ID: %s", userID)
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "Invalid Authorization header format. Must be 'Bearer <token>'")
				return
			}

			userID, err := ValidateToken(authHeader, jwtSecret)
			if errors.Is(err, ErrMissingSecret) {
				log.Println("[AuthMiddleware] Error: JWT secret is not set")
				writeJSONError(w, http.StatusInternalServerError, "Server configuration error: JWT secret missing")
				return
			}
			if err != nil {
				log.Printf("[AuthMiddleware] Error: %v", err)
				writeJSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
