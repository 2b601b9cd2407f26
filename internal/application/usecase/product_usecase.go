package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/application/dto"
	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/catalog"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock no vive aquí: se
// deriva del libro de movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// validSalesMode modos de venta aceptados.
func validSalesMode(mode string) bool {
	switch mode {
	case entity.SalesModeKiloOnly, entity.SalesModePieceOnly, entity.SalesModeMixed, entity.SalesModeVariableWeight:
		return true
	}
	return false
}

// validateConversion verifica que la tabla de conversión sea coherente con el
// modo de venta: un producto por pieza necesita precio por pieza, uno por peso
// necesita precio por kg, y mixed exige piezas por kg para poder convertir.
func validateConversion(mode string, pricePerKg, pricePerPiece, piecesPerKg decimal.Decimal) error {
	if pricePerKg.LessThan(decimal.Zero) || pricePerPiece.LessThan(decimal.Zero) || piecesPerKg.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	switch mode {
	case entity.SalesModePieceOnly:
		if !pricePerPiece.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.SalesModeMixed:
		if !piecesPerKg.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		fallthrough
	default:
		if !pricePerKg.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Create crea un nuevo producto con su tabla de conversión.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" || !validSalesMode(in.SalesMode) {
		return nil, domain.ErrInvalidInput
	}
	if err := validateConversion(in.SalesMode, in.PricePerKg, in.PricePerPiece, in.PiecesPerKg); err != nil {
		return nil, err
	}
	existing, _ := uc.repo.GetBySKU(in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		SKU:           in.SKU,
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		SalesMode:     in.SalesMode,
		PricePerKg:    in.PricePerKg,
		PricePerPiece: in.PricePerPiece,
		PiecesPerKg:   in.PiecesPerKg,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto y su tabla de conversión.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name == "" || !validSalesMode(in.SalesMode) {
		return nil, domain.ErrInvalidInput
	}
	if err := validateConversion(in.SalesMode, in.PricePerKg, in.PricePerPiece, in.PiecesPerKg); err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.CategoryID = in.CategoryID
	product.SalesMode = in.SalesMode
	product.PricePerKg = in.PricePerKg
	product.PricePerPiece = in.PricePerPiece
	product.PiecesPerKg = in.PiecesPerKg
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(limit, offset int) ([]*dto.ProductResponse, error) {
	products, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// Delete elimina un producto.
func (uc *ProductUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

// Normalize convierte una cantidad cruda a la unidad canónica del producto sin
// crear pedido. Útil para que el mostrador verifique una conversión al vuelo.
func (uc *ProductUseCase) Normalize(in dto.NormalizeRequest) (*dto.NormalizeResponse, error) {
	product, err := uc.repo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	norm, err := catalog.Normalize(product, in.Quantity, in.Unit)
	if err != nil {
		return nil, err
	}
	return &dto.NormalizeResponse{
		ProductID:         product.ID,
		CanonicalQuantity: norm.Quantity,
		CanonicalUnit:     norm.Unit,
		Pieces:            norm.Pieces,
		HasPieces:         norm.HasPieces,
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		SalesMode:     p.SalesMode,
		PricePerKg:    p.PricePerKg,
		PricePerPiece: p.PricePerPiece,
		PiecesPerKg:   p.PiecesPerKg,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
