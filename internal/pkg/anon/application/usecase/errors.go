package usecase

import (
	"errors"
	"fmt"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("anon use case persistence error")

// ErrDeliveryFailed means every delivery tier failed for one relayed item.
var ErrDeliveryFailed = errors.New("anon: delivery failed on every tier")

// ErrUnsupportedLanguage is returned for language codes without a string table.
var ErrUnsupportedLanguage = errors.New("anon: unsupported language")
