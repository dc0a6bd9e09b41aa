// internal/pagamento/dto.go
package pagamento

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PaymentDTO é o bloco "payment" do webhook do gateway.
type PaymentDTO struct {
	ID                string  `json:"id" validate:"required"`
	Customer          string  `json:"customer"`
	Value             float64 `json:"value"`
	Status            string  `json:"status" validate:"required"`
	DueDate           string  `json:"dueDate"`
	ExternalReference string  `json:"externalReference"`
	PaymentDate       string  `json:"paymentDate"`
}

// WebhookDTO é o envelope de evento entregue pelo gateway.
type WebhookDTO struct {
	ID          string      `json:"id"`
	Event       string      `json:"event" validate:"required"`
	Payment     *PaymentDTO `json:"payment" validate:"required"`
	DateCreated string      `json:"dateCreated" validate:"required"`
}

// Validar confere os campos obrigatórios de aceite do evento.
func (d *WebhookDTO) Validar() []string {
	var problemas []string
	if err := validate.Struct(d); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			problemas = append(problemas, fmt.Sprintf("%s: falhou na regra '%s'", fe.Field(), fe.Tag()))
		}
	}
	return problemas
}

// ChaveDeduplicacao devolve o id do evento quando o gateway o envia; na
// ausência, compõe uma chave estável entre reentregas do mesmo evento.
func (d *WebhookDTO) ChaveDeduplicacao() string {
	if d.ID != "" {
		return d.ID
	}
	return fmt.Sprintf("%s:%s:%s", d.Event, d.Payment.ID, d.DateCreated)
}
