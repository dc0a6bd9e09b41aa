// internal/cobranca/dto.go
package cobranca

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CriarCobrancaDTO é o payload de criação de cobrança para um lançamento.
// O valor vem do próprio lançamento, nunca do cliente HTTP.
type CriarCobrancaDTO struct {
	Customer    string `json:"customer" validate:"required"`
	BillingType string `json:"billingType" validate:"required,oneof=BOLETO PIX CREDIT_CARD UNDEFINED"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Description string `json:"description"`
}

// Validar retorna os erros de campo de forma itemizada.
func (d *CriarCobrancaDTO) Validar() []string {
	var problemas []string
	if err := validate.Struct(d); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			problemas = append(problemas, fmt.Sprintf("%s: falhou na regra '%s'", fe.Field(), fe.Tag()))
		}
	}
	return problemas
}
