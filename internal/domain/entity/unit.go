package entity

// Unidades en las que puede llegar una cantidad en un pedido o movimiento.
// La unidad canónica del sistema es el kilogramo; los productos vendidos
// solo por pieza usan la pieza como canónica.
const (
	UnitKilogram = "kg"
	UnitGram     = "g"
	UnitPiece    = "piece"
	UnitCurrency = "currency" // importe en dinero, se reinterpreta vía precio
)
