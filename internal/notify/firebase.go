package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"amparo/pkg/models"
)

// FirebaseChannel entrega alertas via push FCM para o device token do contato.
type FirebaseChannel struct {
	client *messaging.Client
}

// NewFirebaseChannel inicializa o cliente Firebase com suporte a FCM
func NewFirebaseChannel(credentialsPath string) (*FirebaseChannel, error) {
	ctx := context.Background()

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Messaging client: %w", err)
	}

	log.Println("✅ Canal push Firebase inicializado com sucesso")

	return &FirebaseChannel{client: client}, nil
}

func (c *FirebaseChannel) Name() string { return "push" }

// Send dispara o push de crise para o contato de apoio.
func (c *FirebaseChannel) Send(ctx context.Context, contact models.Contact, text string) error {
	if contact.DeviceToken == "" {
		return fmt.Errorf("contato %s sem device token", contact.Name)
	}

	message := &messaging.Message{
		Token: contact.DeviceToken,
		Notification: &messaging.Notification{
			Title: "🚨 ALERTA DE CRISE",
			Body:  text,
		},
		Data: map[string]string{
			"type":      "crisis_alert",
			"priority":  "high",
			"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:        "alert",
				Priority:     messaging.PriorityHigh,
				ChannelID:    "amparo_alertas",
				DefaultSound: true,
				Color:        "#FF0000",
			},
		},
	}

	response, err := c.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending alert push: %w", err)
	}

	log.Printf("📲 Push de crise enviado para %s: %s", contact.Name, response)
	return nil
}

// ValidateToken verifica se um device token ainda é aceito pelo FCM,
// enviando uma mensagem de dados silenciosa.
func (c *FirebaseChannel) ValidateToken(ctx context.Context, deviceToken string) bool {
	if deviceToken == "" {
		return false
	}

	message := &messaging.Message{
		Token: deviceToken,
		Data: map[string]string{
			"type": "token_validation",
		},
		Android: &messaging.AndroidConfig{
			Priority: "normal",
		},
	}

	if _, err := c.client.Send(ctx, message); err != nil {
		log.Printf("❌ ValidateToken falhou para token %s...: %v", deviceToken[:min(10, len(deviceToken))], err)
		return false
	}
	return true
}

// IsInvalidTokenError verifica se o erro do Firebase indica token inválido
func IsInvalidTokenError(err error) bool {
	return messaging.IsRegistrationTokenNotRegistered(err) || messaging.IsSenderIDMismatch(err)
}
