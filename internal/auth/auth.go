// Package auth trata a verificação de identidade como colaborador externo,
// atrás de uma interface estreita e sem estado global de sessão.
package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Verifier troca um token de autenticação por um userID confiável.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// FirebaseVerifier valida ID tokens emitidos pelo Firebase Auth.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(ctx context.Context, credentialsPath string) (*FirebaseVerifier, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}

	log.Println("✅ Verificador de identidade Firebase inicializado")

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("invalid ID token: %w", err)
	}
	return decoded.UID, nil
}

// InsecureVerifier aceita o próprio token como uid. Apenas para
// desenvolvimento local sem credenciais Firebase.
type InsecureVerifier struct{}

func (InsecureVerifier) Verify(ctx context.Context, token string) (string, error) {
	uid := strings.TrimSpace(token)
	if uid == "" {
		return "", fmt.Errorf("empty token")
	}
	return uid, nil
}
