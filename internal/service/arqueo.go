package service

// arqueo.go — pure reconciliation calculator.
// expected_cash[moneda] = apertura + Σ pagos efectivo + Σ ingresos − Σ egresos
// All sums are commutative: the result does not depend on insertion order.
// No side effects: the same function serves live monitoring of an open turno
// and historical audit of a closed one.

import (
	"github.com/xzero11x/app-hotel-sub001/internal/dto"
	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// ArqueoInput gathers everything the calculator needs. Declarado* are nil
// while the turno is open (no variance can be computed yet).
type ArqueoInput struct {
	AperturaPEN  decimal.Decimal
	AperturaUSD  decimal.Decimal
	Movimientos  []model.MovimientoCaja
	Pagos        []model.Pago
	DeclaradoPEN *decimal.Decimal
	DeclaradoUSD *decimal.Decimal
}

// CalcularArqueo partitions the ledger and the payments by currency and
// direction and produces the full reconciliation snapshot. Only efectivo
// payments feed the drawer's expected cash; every method feeds the sales
// breakdown.
func CalcularArqueo(in ArqueoInput, tolerancia decimal.Decimal) dto.ArqueoSnapshot {
	snap := dto.ArqueoSnapshot{
		PEN: dto.ArqueoMoneda{Apertura: in.AperturaPEN},
		USD: dto.ArqueoMoneda{Apertura: in.AperturaUSD},
	}

	for _, m := range in.Movimientos {
		det := &snap.PEN
		if m.Moneda == model.MonedaUSD {
			det = &snap.USD
		}
		switch m.Tipo {
		case model.MovIngreso:
			det.Ingresos = det.Ingresos.Add(m.Monto)
		case model.MovEgreso:
			det.Egresos = det.Egresos.Add(m.Monto)
		}
	}

	for _, p := range in.Pagos {
		ventas := &snap.VentasPEN
		det := &snap.PEN
		if p.Moneda == model.MonedaUSD {
			ventas = &snap.VentasUSD
			det = &snap.USD
		}
		switch p.Metodo {
		case model.MetodoEfectivo:
			ventas.Efectivo = ventas.Efectivo.Add(p.Monto)
			det.PagosEfectivo = det.PagosEfectivo.Add(p.Monto)
		case model.MetodoTarjeta:
			ventas.Tarjeta = ventas.Tarjeta.Add(p.Monto)
		case model.MetodoYape:
			ventas.Yape = ventas.Yape.Add(p.Monto)
		case model.MetodoPlin:
			ventas.Plin = ventas.Plin.Add(p.Monto)
		case model.MetodoTransferencia:
			ventas.Transferencia = ventas.Transferencia.Add(p.Monto)
		}
		ventas.Total = ventas.Total.Add(p.Monto)
	}

	cerrarMoneda(&snap.PEN, in.DeclaradoPEN, tolerancia)
	cerrarMoneda(&snap.USD, in.DeclaradoUSD, tolerancia)

	return snap
}

func cerrarMoneda(det *dto.ArqueoMoneda, declarado *decimal.Decimal, tolerancia decimal.Decimal) {
	det.Esperado = det.Apertura.
		Add(det.PagosEfectivo).
		Add(det.Ingresos).
		Sub(det.Egresos)

	if declarado == nil {
		return
	}
	d := declarado.Round(2)
	desvio := d.Sub(det.Esperado)
	clasif := clasificarDesvio(desvio, tolerancia)
	det.Declarado = &d
	det.Desvio = &desvio
	det.Clasificacion = &clasif
}

// clasificarDesvio: "cuadrada" within ±tolerancia, "sobrante" above,
// "faltante" below. Boundaries are inclusive: a desvío of exactly the
// tolerance still counts as cuadrada.
func clasificarDesvio(desvio, tolerancia decimal.Decimal) string {
	switch {
	case desvio.Abs().LessThanOrEqual(tolerancia):
		return model.ClasifCuadrada
	case desvio.GreaterThan(tolerancia):
		return model.ClasifSobrante
	default:
		return model.ClasifFaltante
	}
}
