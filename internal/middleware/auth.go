package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"amparo/internal/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware resolve o usuário autenticado a partir do header
// Authorization e o injeta no contexto da requisição.
type AuthMiddleware struct {
	verifier auth.Verifier
}

func NewAuthMiddleware(verifier auth.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireUser rejeita requisições sem identidade válida.
func (am *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
			return
		}

		userID, err := am.verifier.Verify(r.Context(), token)
		if err != nil {
			log.Printf("🚫 Token rejeitado: %v", err)
			writeAuthError(w, http.StatusUnauthorized, "Token de autenticação inválido")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID devolve o usuário autenticado colocado no contexto pelo middleware.
func UserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithUserID injeta um usuário no contexto. Útil em testes de handlers.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// Clientes websocket não conseguem definir headers customizados.
	return r.URL.Query().Get("token")
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
