package alerts

import "amparo/pkg/models"

// DeriveStatus calcula o status agregado do alerta como função pura da lista
// de destinatários. Nunca é gravado como campo mutável independente; quem lê
// um alerta do banco recalcula a partir dos destinatários persistidos.
func DeriveStatus(recipients []models.RecipientOutcome) models.AlertStatus {
	if len(recipients) == 0 {
		return models.StatusNoRecipients
	}

	var sent, failed int
	for _, r := range recipients {
		if r.Status == models.ChannelSent {
			sent++
		} else {
			failed++
		}
	}

	switch {
	case failed == 0:
		return models.StatusDelivered
	case sent == 0:
		return models.StatusFailed
	default:
		return models.StatusPartiallyDelivered
	}
}
