package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// ErrUnsupportedUnit la combinación (producto, unidad) no es convertible a la unidad canónica.
	ErrUnsupportedUnit = errors.New("unidad no soportada para el producto")

	// ErrQuotaContention la reserva atómica de cupo no pudo completarse tras reintentos acotados.
	// Fallo de infraestructura reintentable; nunca debe confundirse con un rechazo de negocio.
	ErrQuotaContention = errors.New("contención al reservar cupo")
)
