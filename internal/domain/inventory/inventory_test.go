package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// ──────────────────────────────────────────────────────────────────────────────
// CostCalculator
// ──────────────────────────────────────────────────────────────────────────────

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	avg, ok := inventory.CostCalculator(dec("10"), dec("5"), dec("10"), dec("7"))
	require.True(t, ok)
	assert.True(t, avg.Equal(dec("6")), "esperado 6.0000, obtenido %s", avg)
}

func TestCostCalculator_RedondeaACuatroDecimales(t *testing.T) {
	avg, ok := inventory.CostCalculator(dec("3"), dec("1"), dec("3"), dec("1.00005"))
	require.True(t, ok)
	assert.Equal(t, "1.0000", avg.StringFixed(4))

	avg, ok = inventory.CostCalculator(dec("1"), dec("1"), dec("2"), dec("2"))
	require.True(t, ok)
	assert.Equal(t, "1.6667", avg.String())

	// 1.000049999 queda bajo la mitad: redondeo único hacia abajo.
	avg, ok = inventory.CostCalculator(decimal.Zero, decimal.Zero, dec("1"), dec("1.000049999"))
	require.True(t, ok)
	assert.Equal(t, "1.0000", avg.StringFixed(4))

	avg, ok = inventory.CostCalculator(decimal.Zero, decimal.Zero, dec("1"), dec("1.00005"))
	require.True(t, ok)
	assert.Equal(t, "1.0001", avg.StringFixed(4))
}

func TestCostCalculator_StockCeroTomaPrecioDeEntrada(t *testing.T) {
	avg, ok := inventory.CostCalculator(decimal.Zero, dec("9.99"), dec("4"), dec("3.25"))
	require.True(t, ok)
	assert.True(t, avg.Equal(dec("3.25")))
}

func TestCostCalculator_DenominadorNoPositivo(t *testing.T) {
	_, ok := inventory.CostCalculator(dec("-5"), dec("2"), dec("5"), dec("3"))
	assert.False(t, ok, "stock final cero deja el promedio indefinido")

	_, ok = inventory.CostCalculator(dec("-8"), dec("2"), dec("5"), dec("3"))
	assert.False(t, ok)
}

// La propiedad new_avg*new_stock ≈ old_stock*old_avg + qty*price se cumple dentro del redondeo.
func TestCostCalculator_ConservaValorDentroDeTolerancia(t *testing.T) {
	cases := []struct{ stock, avg, qty, price string }{
		{"10", "5", "10", "7"},
		{"3", "1.3333", "7", "2.1"},
		{"0.5", "100", "0.25", "80"},
		{"1234.567", "12.3456", "0.001", "99999"},
	}
	for _, c := range cases {
		avg, ok := inventory.CostCalculator(dec(c.stock), dec(c.avg), dec(c.qty), dec(c.price))
		require.True(t, ok)
		newStock := dec(c.stock).Add(dec(c.qty))
		want := dec(c.stock).Mul(dec(c.avg)).Add(dec(c.qty).Mul(dec(c.price)))
		diff := avg.Mul(newStock).Sub(want).Abs()
		tol := dec("0.0001").Mul(newStock)
		assert.True(t, diff.LessThanOrEqual(tol), "caso %+v: diferencia %s excede %s", c, diff, tol)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Kinds (receipt | issue | return)
// ──────────────────────────────────────────────────────────────────────────────

func product(stock, avg, last string) *entity.Product {
	return &entity.Product{ID: "p1", Name: "Luva", CurrentStock: dec(stock), AveragePrice: dec(avg), UnitPrice: dec(last)}
}

func TestKindFor_TiposConocidos(t *testing.T) {
	for _, tt := range []entity.TransactionType{entity.TransactionReceipt, entity.TransactionIssue, entity.TransactionReturn} {
		k, ok := inventory.KindFor(tt)
		require.True(t, ok)
		assert.Equal(t, tt, k.Type())
	}
	_, ok := inventory.KindFor("transfer")
	assert.False(t, ok)
}

func TestReceipt_ValidaProveedorYNota(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionReceipt)

	var vErr *domain.ValidationError
	err := k.Validate(inventory.Header{InvoiceNumber: "NF-1"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.RuleVendorRequired, vErr.Rule)

	err = k.Validate(inventory.Header{Vendor: "ACME", InvoiceNumber: "  "})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.RuleInvoiceRequired, vErr.Rule)

	assert.NoError(t, k.Validate(inventory.Header{Vendor: "ACME", InvoiceNumber: "NF-1"}))
}

func TestReceipt_Efecto(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionReceipt)
	p := product("10", "5", "5")

	price, err := k.LinePrice(p, ptr(dec("7")))
	require.NoError(t, err)
	m, err := k.Effect(p, dec("10"), price, inventory.Policy{})
	require.NoError(t, err)

	assert.True(t, m.CurrentStock.Equal(dec("20")))
	assert.True(t, m.AveragePrice.Equal(dec("6")))
	assert.True(t, m.UnitPrice.Equal(dec("7")))
}

func TestReceipt_SinPrecioEsRechazado(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionReceipt)
	_, err := k.LinePrice(product("1", "1", "1"), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = k.LinePrice(product("1", "1", "1"), ptr(dec("-1")))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReceipt_StockNegativoQueAnulaElDenominador(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionReceipt)
	_, err := k.Effect(product("-3", "2", "2"), dec("3"), dec("4"), inventory.Policy{AllowNegativeStock: true})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.RuleCostBasis, vErr.Rule)
}

func TestIssue_ValidaContexto(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionIssue)
	full := inventory.Header{
		Requester: "João", Sector: "Produção", ProjectDestination: "Letreiro",
		Signature: "data:image/png;base64,AAAA", Accepted: true,
	}
	require.NoError(t, k.Validate(full))

	cases := map[string]func(h *inventory.Header){
		domain.RuleRequesterRequired:  func(h *inventory.Header) { h.Requester = "" },
		domain.RuleSectorRequired:     func(h *inventory.Header) { h.Sector = "Cozinha" },
		domain.RuleProjectRequired:    func(h *inventory.Header) { h.ProjectDestination = " " },
		domain.RuleSignatureRequired:  func(h *inventory.Header) { h.Signature = "" },
		domain.RuleAcceptanceRequired: func(h *inventory.Header) { h.Accepted = false },
	}
	for rule, mutate := range cases {
		h := full
		mutate(&h)
		var vErr *domain.ValidationError
		err := k.Validate(h)
		require.True(t, errors.As(err, &vErr), "regla %s", rule)
		assert.Equal(t, rule, vErr.Rule)
	}
}

func TestIssue_EfectoMantienePromedio(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionIssue)
	p := product("20", "6", "7")

	price, err := k.LinePrice(p, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("6")), "salida valorada al costo promedio")

	m, err := k.Effect(p, dec("5"), price, inventory.Policy{AllowNegativeStock: true})
	require.NoError(t, err)
	assert.True(t, m.CurrentStock.Equal(dec("15")))
	assert.True(t, m.AveragePrice.Equal(dec("6")))
	assert.True(t, m.UnitPrice.Equal(dec("7")))
}

func TestIssue_PisoDeStock(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionIssue)
	p := product("2", "6", "7")

	m, err := k.Effect(p, dec("5"), dec("6"), inventory.Policy{AllowNegativeStock: true})
	require.NoError(t, err)
	assert.True(t, m.CurrentStock.Equal(dec("-3")))

	_, err = k.Effect(p, dec("5"), dec("6"), inventory.Policy{AllowNegativeStock: false})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestReturn_DestinoYEfecto(t *testing.T) {
	k, _ := inventory.KindFor(entity.TransactionReturn)
	assert.ErrorIs(t, k.Validate(inventory.Header{Destination: "Lixo"}), domain.ErrValidation)
	require.NoError(t, k.Validate(inventory.Header{Destination: "Almoxarifado"}))

	p := product("4", "2.5", "3")
	price, err := k.LinePrice(p, ptr(dec("2.4")))
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("2.4")), "snapshot del caller tiene prioridad")

	m, err := k.Effect(p, dec("1"), price, inventory.Policy{})
	require.NoError(t, err)
	assert.True(t, m.CurrentStock.Equal(dec("5")))
	assert.True(t, m.AveragePrice.Equal(dec("2.5")))
}

func TestStamp_SoloCamposDelTipo(t *testing.T) {
	h := inventory.Header{
		Vendor: "ACME", InvoiceNumber: "NF-9", Requester: "Ana", Sector: "Adm",
		ProjectDestination: "Obra", Destination: "Descarte", Signature: "sig", Accepted: true,
	}

	var tx entity.Transaction
	k, _ := inventory.KindFor(entity.TransactionReceipt)
	k.Stamp(&tx, h)
	assert.Equal(t, "ACME", tx.Vendor)
	assert.Empty(t, tx.Requester)
	assert.Empty(t, tx.Signature)

	tx = entity.Transaction{}
	k, _ = inventory.KindFor(entity.TransactionIssue)
	k.Stamp(&tx, h)
	assert.Empty(t, tx.Vendor)
	assert.Equal(t, "Obra", tx.ProjectDestination)
	assert.True(t, tx.Accepted)

	tx = entity.Transaction{}
	k, _ = inventory.KindFor(entity.TransactionReturn)
	k.Stamp(&tx, h)
	assert.Equal(t, "Descarte", tx.Destination)
	assert.Empty(t, tx.Signature)
}

// ──────────────────────────────────────────────────────────────────────────────
// CodeAllocator
// ──────────────────────────────────────────────────────────────────────────────

func TestCodeAllocator_CatalogoVacio(t *testing.T) {
	a := inventory.NewCodeAllocator("", 0)
	assert.Equal(t, "Prod001", a.Next(nil))
}

func TestCodeAllocator_IdempotenteAntesDeInsertar(t *testing.T) {
	a := inventory.NewCodeAllocator("Prod", 3)
	catalog := []*entity.Product{{Code: "Prod001"}}
	first := a.Next(catalog)
	second := a.Next(catalog)
	assert.Equal(t, "Prod002", first)
	assert.Equal(t, first, second)

	catalog = append(catalog, &entity.Product{Code: first})
	assert.Equal(t, "Prod003", a.Next(catalog))
}

func TestCodeAllocator_IgnoraCodigosMalformados(t *testing.T) {
	a := inventory.NewCodeAllocator("Prod", 3)
	codes := []string{"Prod007", "prod099", "ProdX", "Prod", "XProd050", "Prod010"}
	assert.Equal(t, "Prod011", a.NextFromCodes(codes))
}

func TestCodeAllocator_SuperaElAncho(t *testing.T) {
	a := inventory.NewCodeAllocator("Prod", 3)
	assert.Equal(t, "Prod1000", a.NextFromCodes([]string{"Prod999"}))
}
