package cancellation

import "errors"

var (
	// ErrUnknownPolicy возвращается для неизвестного тарифа отмены
	ErrUnknownPolicy = errors.New("cancellation: unknown policy")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancellation: invalid input")
)
