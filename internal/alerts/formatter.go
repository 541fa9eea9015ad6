package alerts

import (
	"fmt"
	"strings"

	"amparo/pkg/models"
)

// FormatMessage monta o texto final do alerta a partir da mensagem do usuário
// e da localização opcional. Função pura, sem efeitos colaterais.
func FormatMessage(message string, loc *models.Location) string {
	var b strings.Builder
	b.WriteString("🚨 ")
	b.WriteString(strings.TrimSpace(message))

	if loc != nil {
		b.WriteString("\n\n📍 Minha localização: ")
		if loc.Address != "" {
			b.WriteString(loc.Address)
		} else {
			b.WriteString(fmt.Sprintf("%.6f, %.6f", loc.Latitude, loc.Longitude))
		}
		b.WriteString(fmt.Sprintf("\nhttps://www.google.com/maps?q=%.6f,%.6f", loc.Latitude, loc.Longitude))
	}

	return b.String()
}
