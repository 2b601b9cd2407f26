package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateQuotaRequest alta de cupo para un día. Exactamente uno de
// product_id/category_id. Date en formato 2006-01-02.
type CreateQuotaRequest struct {
	Date                  string          `json:"date"`
	ProductID             string          `json:"product_id,omitempty"`
	CategoryID            string          `json:"category_id,omitempty"`
	Limit                 decimal.Decimal `json:"limit"`
	Unit                  string          `json:"unit,omitempty"`
	AlertThresholdPercent int             `json:"alert_threshold_percent,omitempty"`
}

// BulkCreateQuotaRequest alta masiva: un cupo por día de [from, to].
// Con overwrite en falso los días ya configurados se reportan como omitidos.
type BulkCreateQuotaRequest struct {
	From                  string          `json:"from"`
	To                    string          `json:"to"`
	ProductID             string          `json:"product_id,omitempty"`
	CategoryID            string          `json:"category_id,omitempty"`
	Limit                 decimal.Decimal `json:"limit"`
	Unit                  string          `json:"unit,omitempty"`
	AlertThresholdPercent int             `json:"alert_threshold_percent,omitempty"`
	Overwrite             bool            `json:"overwrite,omitempty"`
}

// QuotaResponse cupo configurado con su consumo corriente.
type QuotaResponse struct {
	ID                    string          `json:"id"`
	Date                  string          `json:"date"`
	ProductID             string          `json:"product_id,omitempty"`
	CategoryID            string          `json:"category_id,omitempty"`
	Limit                 decimal.Decimal `json:"limit"`
	Unit                  string          `json:"unit"`
	Consumed              decimal.Decimal `json:"consumed"`
	Available             decimal.Decimal `json:"available"`
	AlertThresholdPercent int             `json:"alert_threshold_percent"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// BulkCreateQuotaResponse días creados, sobrescritos y omitidos.
type BulkCreateQuotaResponse struct {
	Created     []string `json:"created"`
	Overwritten []string `json:"overwritten,omitempty"`
	Skipped     []string `json:"skipped,omitempty"`
}
