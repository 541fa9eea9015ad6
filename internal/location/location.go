package location

import (
	"context"
	"log"
	"time"

	"amparo/pkg/models"
)

// Provider é o colaborador externo de localização (sensor do dispositivo e
// geocoding reverso). As implementações concretas ficam fora deste módulo.
type Provider interface {
	GetCurrentPosition(ctx context.Context) (*models.Location, error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// Enricher resolve coordenada + endereço em cadeia de melhor esforço:
// coordenada do chamador > posição do dispositivo > nada. O endereço é
// estritamente aditivo: falha no geocoding nunca descarta a coordenada.
type Enricher struct {
	provider        Provider
	positionTimeout time.Duration
	geocodeTimeout  time.Duration
}

func NewEnricher(provider Provider, positionTimeout, geocodeTimeout time.Duration) *Enricher {
	return &Enricher{
		provider:        provider,
		positionTimeout: positionTimeout,
		geocodeTimeout:  geocodeTimeout,
	}
}

// Enrich nunca retorna erro: qualquer falha degrada para menos informação.
func (e *Enricher) Enrich(ctx context.Context, raw *models.Location) *models.Location {
	loc := e.resolveCoordinate(ctx, raw)
	if loc == nil {
		return nil
	}

	if loc.Address == "" && e.provider != nil {
		geoCtx, cancel := context.WithTimeout(ctx, e.geocodeTimeout)
		defer cancel()

		address, err := e.provider.ReverseGeocode(geoCtx, loc.Latitude, loc.Longitude)
		if err != nil {
			log.Printf("⚠️  Geocoding reverso falhou, mantendo apenas coordenada: %v", err)
		} else {
			loc.Address = address
		}
	}

	return loc
}

func (e *Enricher) resolveCoordinate(ctx context.Context, raw *models.Location) *models.Location {
	if raw != nil {
		copied := *raw
		return &copied
	}

	if e.provider == nil {
		return nil
	}

	posCtx, cancel := context.WithTimeout(ctx, e.positionTimeout)
	defer cancel()

	loc, err := e.provider.GetCurrentPosition(posCtx)
	if err != nil {
		log.Printf("⚠️  Posição do dispositivo indisponível, alerta segue sem localização: %v", err)
		return nil
	}

	return loc
}
