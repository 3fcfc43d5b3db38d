// Package calc реализует нормативный расчёт сметной стоимости ИГИ:
// определение расценки позиции, композицию коэффициентов, интерполяцию
// табличных процентов, расчёт дополнительных затрат и свод сметы.
// Все вычисления детерминированы и работают только со справочниками
// каталога и входным списком позиций.
package calc

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/catalog"
)

type Engine struct {
	cat *catalog.Catalog
	log zerolog.Logger
}

func NewEngine(cat *catalog.Catalog, log zerolog.Logger) *Engine {
	return &Engine{cat: cat, log: log}
}

func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

var one = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// round2 — округление денежной величины до копеек, половина вверх.
func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
