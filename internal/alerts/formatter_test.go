package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"amparo/pkg/models"
)

func TestFormatMessage_SemLocalizacao(t *testing.T) {
	got := FormatMessage("Preciso de ajuda urgente!", nil)

	assert.Equal(t, "🚨 Preciso de ajuda urgente!", got)
	assert.NotContains(t, got, "localização")
}

func TestFormatMessage_ComCoordenada(t *testing.T) {
	loc := &models.Location{Latitude: -23.55052, Longitude: -46.633308}

	got := FormatMessage("Ajuda", loc)

	assert.Contains(t, got, "🚨 Ajuda")
	assert.Contains(t, got, "-23.550520, -46.633308")
	assert.Contains(t, got, "https://www.google.com/maps?q=-23.550520,-46.633308")
}

func TestFormatMessage_EnderecoSubstituiCoordenadaNoTexto(t *testing.T) {
	loc := &models.Location{
		Latitude:  -23.55052,
		Longitude: -46.633308,
		Address:   "Praça da Sé, São Paulo - SP",
	}

	got := FormatMessage("Ajuda", loc)

	assert.Contains(t, got, "Praça da Sé, São Paulo - SP")
	// O link do mapa continua usando a coordenada.
	assert.Contains(t, got, "https://www.google.com/maps?q=-23.550520,-46.633308")
}

func TestFormatMessage_RemoveEspacos(t *testing.T) {
	assert.Equal(t, "🚨 Socorro", FormatMessage("  Socorro  ", nil))
}
