package inventory

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// Valores por defecto de la numeración de productos (Prod001, Prod002, ...).
const (
	DefaultCodePrefix = "Prod"
	DefaultCodeWidth  = 3
)

// CodeAllocator deriva el siguiente código secuencial a partir del catálogo.
// Es puro: no consume contadores, por lo que puede llamarse varias veces antes de insertar.
type CodeAllocator struct {
	prefix  string
	width   int
	pattern *regexp.Regexp
}

// NewCodeAllocator construye el asignador; prefijo vacío o ancho no positivo usan los valores por defecto.
func NewCodeAllocator(prefix string, width int) *CodeAllocator {
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	if width <= 0 {
		width = DefaultCodeWidth
	}
	return &CodeAllocator{
		prefix:  prefix,
		width:   width,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)$`),
	}
}

// Next devuelve prefijo + (máximo sufijo + 1) con ceros a la izquierda.
// Códigos que no siguen el patrón no aportan nada.
func (a *CodeAllocator) Next(products []*entity.Product) string {
	codes := make([]string, 0, len(products))
	for _, p := range products {
		if p != nil {
			codes = append(codes, p.Code)
		}
	}
	return a.NextFromCodes(codes)
}

// NextFromCodes igual que Next pero sobre la lista de códigos.
func (a *CodeAllocator) NextFromCodes(codes []string) string {
	max := 0
	for _, c := range codes {
		m := a.pattern.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%0*d", a.prefix, a.width, max+1)
}
