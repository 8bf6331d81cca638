package models

// Requests for the public HTTP endpoints. Defined in domain for consistency and reuse.

type PriceRequest struct {
	Symbol string `param:"symbol" query:"symbol" json:"symbol" validate:"required,min=2,max=24"`
}

type SymbolSignalRequest struct {
	Symbol string `param:"symbol" query:"symbol" json:"symbol" validate:"required,min=2,max=24"`
}

type RecentSignalsRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
}

type TrendingRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type OHLCVRequest struct {
	Symbol    string `param:"symbol" query:"symbol" json:"symbol" validate:"required,min=2,max=24"`
	Timeframe string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d 1w"`
	Limit     int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
