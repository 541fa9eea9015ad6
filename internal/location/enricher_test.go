package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amparo/pkg/models"
)

type fakeProvider struct {
	position    *models.Location
	positionErr error
	address     string
	geocodeErr  error

	positionCalls int
	geocodeCalls  int
}

func (f *fakeProvider) GetCurrentPosition(ctx context.Context) (*models.Location, error) {
	f.positionCalls++
	if f.positionErr != nil {
		return nil, f.positionErr
	}
	copied := *f.position
	return &copied, nil
}

func (f *fakeProvider) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	f.geocodeCalls++
	if f.geocodeErr != nil {
		return "", f.geocodeErr
	}
	return f.address, nil
}

func newTestEnricher(p Provider) *Enricher {
	return NewEnricher(p, 100*time.Millisecond, 100*time.Millisecond)
}

func TestEnrich_CoordenadaDoChamadorPulaDispositivo(t *testing.T) {
	provider := &fakeProvider{address: "Praça da Sé"}
	e := newTestEnricher(provider)

	raw := &models.Location{Latitude: -23.5, Longitude: -46.6}
	loc := e.Enrich(context.Background(), raw)

	require.NotNil(t, loc)
	assert.Equal(t, 0, provider.positionCalls, "coordenada do chamador dispensa o sensor")
	assert.Equal(t, 1, provider.geocodeCalls)
	assert.Equal(t, "Praça da Sé", loc.Address)
	assert.Equal(t, raw.Latitude, loc.Latitude)
}

func TestEnrich_SemCoordenadaConsultaDispositivo(t *testing.T) {
	provider := &fakeProvider{
		position: &models.Location{Latitude: 1, Longitude: 2},
		address:  "Rua A",
	}
	e := newTestEnricher(provider)

	loc := e.Enrich(context.Background(), nil)

	require.NotNil(t, loc)
	assert.Equal(t, 1, provider.positionCalls)
	assert.Equal(t, "Rua A", loc.Address)
}

func TestEnrich_DispositivoNegadoDegradaParaNada(t *testing.T) {
	provider := &fakeProvider{positionErr: errors.New("permission denied")}
	e := newTestEnricher(provider)

	loc := e.Enrich(context.Background(), nil)

	assert.Nil(t, loc)
	assert.Equal(t, 0, provider.geocodeCalls, "sem coordenada não há o que geocodificar")
}

func TestEnrich_GeocodingFalhaMantemCoordenada(t *testing.T) {
	provider := &fakeProvider{geocodeErr: errors.New("quota exceeded")}
	e := newTestEnricher(provider)

	raw := &models.Location{Latitude: -23.5, Longitude: -46.6}
	loc := e.Enrich(context.Background(), raw)

	require.NotNil(t, loc, "falha no geocoding nunca descarta a coordenada")
	assert.Equal(t, raw.Latitude, loc.Latitude)
	assert.Equal(t, raw.Longitude, loc.Longitude)
	assert.Empty(t, loc.Address)
}

func TestEnrich_SemProviderUsaApenasCoordenadaDoChamador(t *testing.T) {
	e := newTestEnricher(nil)

	raw := &models.Location{Latitude: 1, Longitude: 2}
	loc := e.Enrich(context.Background(), raw)

	require.NotNil(t, loc)
	assert.Equal(t, raw.Latitude, loc.Latitude)
	assert.Empty(t, loc.Address)

	assert.Nil(t, e.Enrich(context.Background(), nil))
}

func TestEnrich_NaoMutaEntrada(t *testing.T) {
	provider := &fakeProvider{address: "Rua B"}
	e := newTestEnricher(provider)

	raw := &models.Location{Latitude: 1, Longitude: 2}
	loc := e.Enrich(context.Background(), raw)

	assert.Empty(t, raw.Address, "a entrada do chamador não é modificada")
	assert.Equal(t, "Rua B", loc.Address)
}
