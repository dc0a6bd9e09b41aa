// internal/comissao/dto.go
package comissao

type AplicarAjusteDTO struct {
	Tipo   string  `json:"tipo" validate:"required,oneof=BONUS DESCONTO CORRECAO"`
	Delta  float64 `json:"delta" validate:"required"`
	Motivo string  `json:"motivo" validate:"required"`
}
