// internal/comissao/calculator.go
package comissao

import (
	"math"

	"github.com/NavalhaDigital/api-barbearia/internal/politicacomissao"
)

// Arredondar2 arredonda para 2 casas decimais (meio para cima), o padrão
// monetário do sistema. O epsilon absorve o erro de representação binária:
// sem ele, 2.675*100 vira 267.4999... e arredondaria para baixo.
func Arredondar2(v float64) float64 {
	return math.Floor(v*100+0.5+1e-9) / 100
}

// Calcular aplica a política a um valor de serviço: percentual sobre o valor,
// travado em [ValorMinimo, ValorMaximo] quando os limites existem. Função
// pura, sem I/O.
func Calcular(valorServico float64, p *politicacomissao.PoliticaComissao) float64 {
	bruto := valorServico * p.Percentual / 100
	if p.ValorMinimo != nil && bruto < *p.ValorMinimo {
		bruto = *p.ValorMinimo
	}
	if p.ValorMaximo != nil && bruto > *p.ValorMaximo {
		bruto = *p.ValorMaximo
	}
	return Arredondar2(bruto)
}
