// internal/pagamento/model.go
package pagamento

import (
	"time"

	"gorm.io/gorm"
)

// Status locais do espelho de pagamento.
const (
	StatusPendente  = "PENDENTE"
	StatusRecebido  = "RECEBIDO"
	StatusVencido   = "VENCIDO"
	StatusCancelado = "CANCELADO"
)

// ordemStatus define a progressão permitida do espelho. Um webhook atrasado
// com status de ordem menor nunca regride o status local; CANCELADO é
// terminal e alcançável de qualquer estado (estorno/chargeback).
var ordemStatus = map[string]int{
	StatusPendente:  1,
	StatusVencido:   2,
	StatusRecebido:  3,
	StatusCancelado: 4,
}

// Pagamento é o espelho local de uma cobrança hospedada no gateway. Nunca é
// deletado; cancelamento é só mais uma transição de status.
type Pagamento struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	GatewayPaymentID string     `gorm:"size:100;not null;uniqueIndex" json:"gatewayPaymentId"`
	Cliente          string     `gorm:"size:100" json:"cliente"`
	Valor            float64    `gorm:"not null;default:0" json:"valor"`
	Status           string     `gorm:"size:20;not null;default:'PENDENTE';index" json:"status"`
	DataVencimento   string     `gorm:"size:20" json:"dataVencimento"`
	DataPagamento    string     `gorm:"size:20" json:"dataPagamento"`
	LancamentoID     *uint      `gorm:"index" json:"lancamentoId,omitempty"`
	UltimoPayload    string     `gorm:"type:text" json:"-"`
	SincronizadoEm   *time.Time `json:"sincronizadoEm,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// WebhookEvento registra cada evento entregue pelo gateway. A chave de
// deduplicação garante no máximo um conjunto de efeitos por evento, mesmo
// sob tempestade de reentregas do provedor.
type WebhookEvento struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	GatewayEventID string    `gorm:"size:255;not null;uniqueIndex" json:"gatewayEventId"`
	EventType      string    `gorm:"size:100;not null" json:"eventType"`
	RecebidoEm     time.Time `gorm:"not null" json:"recebidoEm"`
	Processado     bool      `gorm:"not null;default:false;index" json:"processado"`
	ErroProcesso   *string   `gorm:"size:1000" json:"erroProcesso,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Pagamento{}, &WebhookEvento{})
}
