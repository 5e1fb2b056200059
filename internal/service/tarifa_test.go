package service

import (
	"errors"
	"testing"

	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcularLateCheckout_Tabla(t *testing.T) {
	tarifa := dec("100.00")

	cases := []struct {
		horas       int
		monto       string
		pct         int
		diaCompleto bool
	}{
		{1, "25.00", 25, false},
		{2, "25.00", 25, false},
		{3, "50.00", 50, false}, // 3h es media noche, nunca día completo
		{4, "50.00", 50, false},
		{5, "50.00", 50, false},
		{6, "50.00", 50, false},
		{24, "100.00", 100, true},
	}

	for _, tc := range cases {
		got, err := CalcularLateCheckout(tarifa, tc.horas)
		require.NoError(t, err, "horas=%d", tc.horas)
		assert.True(t, got.Monto.Equal(dec(tc.monto)), "horas=%d monto=%s", tc.horas, got.Monto)
		assert.Equal(t, tc.pct, got.Porcentaje)
		assert.Equal(t, tc.diaCompleto, got.DiaCompleto)
	}
}

func TestCalcularLateCheckout_RedondeoCentimos(t *testing.T) {
	got, err := CalcularLateCheckout(dec("90.50"), 1)
	require.NoError(t, err)
	// 90.50 × 25% = 22.625 → 22.63
	assert.True(t, got.Monto.Equal(dec("22.63")), "monto=%s", got.Monto)
}

func TestCalcularLateCheckout_HorasFueraDeTabla(t *testing.T) {
	for _, horas := range []int{0, 7, 12, 23, 25, -1} {
		_, err := CalcularLateCheckout(dec("100.00"), horas)
		require.Error(t, err, "horas=%d", horas)
		assert.True(t, errors.Is(err, model.ErrValidacion), "horas=%d debe ser error de validación", horas)
	}
}
