package service

import (
	"math/rand"
	"testing"

	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tol = decimal.RequireFromString("0.50")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalcularArqueo_EsperadoPorMoneda(t *testing.T) {
	in := ArqueoInput{
		AperturaPEN: dec("200.00"),
		AperturaUSD: dec("50.00"),
		Movimientos: []model.MovimientoCaja{
			{Tipo: model.MovIngreso, Moneda: model.MonedaPEN, Monto: dec("30.00")},
			{Tipo: model.MovEgreso, Moneda: model.MonedaPEN, Monto: dec("45.50")},
			{Tipo: model.MovEgreso, Moneda: model.MonedaUSD, Monto: dec("10.00")},
		},
		Pagos: []model.Pago{
			{Metodo: model.MetodoEfectivo, Moneda: model.MonedaPEN, Monto: dec("120.00")},
			{Metodo: model.MetodoTarjeta, Moneda: model.MonedaPEN, Monto: dec("80.00")},
			{Metodo: model.MetodoEfectivo, Moneda: model.MonedaUSD, Monto: dec("25.00")},
			{Metodo: model.MetodoYape, Moneda: model.MonedaPEN, Monto: dec("15.00")},
		},
	}

	snap := CalcularArqueo(in, tol)

	// PEN: 200 + 120 efectivo + 30 − 45.50 = 304.50; tarjeta y yape no tocan el cajón
	assert.True(t, snap.PEN.Esperado.Equal(dec("304.50")), "esperado PEN = %s", snap.PEN.Esperado)
	// USD: 50 + 25 − 10 = 65
	assert.True(t, snap.USD.Esperado.Equal(dec("65.00")), "esperado USD = %s", snap.USD.Esperado)

	// Sales count every method
	assert.True(t, snap.VentasPEN.Total.Equal(dec("215.00")))
	assert.True(t, snap.VentasPEN.Tarjeta.Equal(dec("80.00")))
	assert.True(t, snap.VentasPEN.Yape.Equal(dec("15.00")))
	assert.True(t, snap.VentasUSD.Total.Equal(dec("25.00")))

	// Sin declaración → sin clasificación
	assert.Nil(t, snap.PEN.Clasificacion)
	assert.Nil(t, snap.PEN.Desvio)
}

func TestCalcularArqueo_OrdenNoImporta(t *testing.T) {
	movs := []model.MovimientoCaja{
		{Tipo: model.MovIngreso, Moneda: model.MonedaPEN, Monto: dec("10.10")},
		{Tipo: model.MovEgreso, Moneda: model.MonedaPEN, Monto: dec("3.33")},
		{Tipo: model.MovIngreso, Moneda: model.MonedaPEN, Monto: dec("7.77")},
		{Tipo: model.MovEgreso, Moneda: model.MonedaPEN, Monto: dec("1.01")},
		{Tipo: model.MovIngreso, Moneda: model.MonedaUSD, Monto: dec("5.00")},
	}
	pagos := []model.Pago{
		{Metodo: model.MetodoEfectivo, Moneda: model.MonedaPEN, Monto: dec("40.00")},
		{Metodo: model.MetodoPlin, Moneda: model.MonedaPEN, Monto: dec("12.00")},
		{Metodo: model.MetodoEfectivo, Moneda: model.MonedaPEN, Monto: dec("8.50")},
	}

	base := CalcularArqueo(ArqueoInput{AperturaPEN: dec("100.00"), Movimientos: movs, Pagos: pagos}, tol)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		m := append([]model.MovimientoCaja(nil), movs...)
		p := append([]model.Pago(nil), pagos...)
		rng.Shuffle(len(m), func(a, b int) { m[a], m[b] = m[b], m[a] })
		rng.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })

		got := CalcularArqueo(ArqueoInput{AperturaPEN: dec("100.00"), Movimientos: m, Pagos: p}, tol)
		assert.True(t, got.PEN.Esperado.Equal(base.PEN.Esperado))
		assert.True(t, got.USD.Esperado.Equal(base.USD.Esperado))
		assert.True(t, got.VentasPEN.Total.Equal(base.VentasPEN.Total))
	}
}

func TestCalcularArqueo_ClasificacionLimites(t *testing.T) {
	cases := []struct {
		declarado string
		want      string
	}{
		{"100.00", model.ClasifCuadrada}, // desvío 0.00
		{"100.49", model.ClasifCuadrada},
		{"100.50", model.ClasifCuadrada}, // límite inclusivo
		{"100.51", model.ClasifSobrante},
		{"99.50", model.ClasifCuadrada}, // límite inclusivo negativo
		{"99.49", model.ClasifFaltante},
		{"105.00", model.ClasifSobrante},
		{"96.80", model.ClasifFaltante},
	}

	for _, tc := range cases {
		t.Run(tc.declarado, func(t *testing.T) {
			declarado := dec(tc.declarado)
			snap := CalcularArqueo(ArqueoInput{
				AperturaPEN:  dec("100.00"),
				DeclaradoPEN: &declarado,
			}, tol)
			require.NotNil(t, snap.PEN.Clasificacion)
			assert.Equal(t, tc.want, *snap.PEN.Clasificacion)
		})
	}
}

func TestCalcularArqueo_DesvioFirmado(t *testing.T) {
	declarado := dec("96.80")
	snap := CalcularArqueo(ArqueoInput{AperturaPEN: dec("100.00"), DeclaradoPEN: &declarado}, tol)
	require.NotNil(t, snap.PEN.Desvio)
	assert.True(t, snap.PEN.Desvio.Equal(dec("-3.20")), "desvío = %s", snap.PEN.Desvio)
	assert.Equal(t, model.ClasifFaltante, *snap.PEN.Clasificacion)
}

func TestClasificarDesvio(t *testing.T) {
	assert.Equal(t, model.ClasifCuadrada, clasificarDesvio(dec("0.00"), tol))
	assert.Equal(t, model.ClasifCuadrada, clasificarDesvio(dec("-0.50"), tol))
	assert.Equal(t, model.ClasifSobrante, clasificarDesvio(dec("5.00"), tol))
	assert.Equal(t, model.ClasifFaltante, clasificarDesvio(dec("-0.51"), tol))
}
