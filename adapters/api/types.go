package api

import (
	"gocompare/adapters/stats/engine"
	"gocompare/adapters/stats/hypothesis"
	"gocompare/app"
	"gocompare/domain/comparison"
	"gocompare/domain/core"
)

// CompareRequest is the body of POST /v1/compare
type CompareRequest struct {
	A                 []float64 `json:"a" binding:"required"`
	B                 []float64 `json:"b" binding:"required"`
	Alpha             *float64  `json:"alpha,omitempty"`
	NormalityStrategy string    `json:"normality_strategy,omitempty"`
}

// CompareResponse is the body returned by POST /v1/compare
type CompareResponse struct {
	ID        core.RunID         `json:"id"`
	InputHash core.Hash          `json:"input_hash"`
	Report    *comparison.Report `json:"report"`
}

// BatchRequest is the body of POST /v1/compare/batch
type BatchRequest struct {
	Pairs             []app.PairInput `json:"pairs" binding:"required"`
	Alpha             *float64        `json:"alpha,omitempty"`
	NormalityStrategy string          `json:"normality_strategy,omitempty"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// engineConfig overlays request options on the server defaults. It returns nil when the
// request overrides nothing.
func engineConfig(base engine.Config, alpha *float64, strategy string) *engine.Config {
	if alpha == nil && strategy == "" {
		return nil
	}
	cfg := base
	if alpha != nil {
		cfg.Alpha = *alpha
	}
	if strategy != "" {
		cfg.NormalityStrategy = hypothesis.NormalityStrategy(strategy)
	}
	return &cfg
}
