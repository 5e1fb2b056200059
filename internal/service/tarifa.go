package service

// tarifa.go — late checkout / stay extension fee.
// A closed bucket table maps extra hours to a percentage of the nightly
// rate. Hours outside the table are a validation error: the business rule
// defines no interpolation between buckets.

import (
	"fmt"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// lateCheckoutTabla: extra hours → percentage of the nightly rate.
// 24 hours is a full extra day: the stay must be extended before charging.
var lateCheckoutTabla = map[int]int{
	1:  25,
	2:  25,
	3:  50,
	4:  50,
	5:  50,
	6:  50,
	24: 100,
}

const lateCheckoutDiaCompleto = 24

// CalcularLateCheckout computes the fee for the given bucket.
// monto = tarifaNoche × porcentaje / 100, rounded to 2 places.
func CalcularLateCheckout(tarifaNoche decimal.Decimal, horas int) (dto.TarifaLateCheckout, error) {
	pct, ok := lateCheckoutTabla[horas]
	if !ok {
		return dto.TarifaLateCheckout{}, fmt.Errorf("%w: horas de late checkout no tarifadas (%d)", model.ErrValidacion, horas)
	}

	monto := tarifaNoche.
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(2)

	return dto.TarifaLateCheckout{
		Monto:       monto,
		Porcentaje:  pct,
		DiaCompleto: horas == lateCheckoutDiaCompleto,
	}, nil
}
