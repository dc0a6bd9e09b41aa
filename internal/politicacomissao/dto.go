// internal/politicacomissao/dto.go
package politicacomissao

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UpsertPoliticaDTO é o payload administrativo de criação/substituição de política.
type UpsertPoliticaDTO struct {
	BarbeiroID  uint     `json:"barbeiroId" validate:"required"`
	ServicoID   *uint    `json:"servicoId"`
	Percentual  float64  `json:"percentual" validate:"gte=0,lte=100"`
	ValorMinimo *float64 `json:"valorMinimo" validate:"omitempty,gte=0"`
	ValorMaximo *float64 `json:"valorMaximo" validate:"omitempty,gte=0"`
}

// Validar retorna os erros de campo de forma itemizada.
func (d *UpsertPoliticaDTO) Validar() []string {
	var problemas []string
	if err := validate.Struct(d); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			problemas = append(problemas, fmt.Sprintf("%s: falhou na regra '%s'", fe.Field(), fe.Tag()))
		}
	}
	if d.ValorMinimo != nil && d.ValorMaximo != nil && *d.ValorMaximo < *d.ValorMinimo {
		problemas = append(problemas, "ValorMaximo: deve ser maior ou igual a ValorMinimo")
	}
	return problemas
}
