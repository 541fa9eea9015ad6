package models

import "errors"

// Erros sentinela do subsistema de alertas. Acesso a recurso de outro usuário
// retorna ErrNotFound, indistinguível de inexistência.
var (
	ErrNotFound     = errors.New("não encontrado")
	ErrInvalidInput = errors.New("dados inválidos")
	ErrCancelled    = errors.New("operação cancelada")
)
