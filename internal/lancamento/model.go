// internal/lancamento/model.go
package lancamento

import (
	"time"

	"gorm.io/gorm"
)

// Tipos de lançamento financeiro.
const (
	TipoReceita  = "RECEITA"
	TipoDespesa  = "DESPESA"
	TipoComissao = "COMISSAO"
)

// Lancamento é um evento financeiro da barbearia. Lançamentos de RECEITA
// confirmados são a origem das comissões; lançamentos de COMISSAO são gerados
// pelo motor de liquidação como trilha de auditoria e nunca pelo caixa.
type Lancamento struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Tipo           string         `gorm:"size:20;not null;index" json:"tipo"`
	BarbeiroID     uint           `gorm:"not null;index" json:"barbeiroId"`
	ServicoID      *uint          `gorm:"index" json:"servicoId,omitempty"`
	AgendamentoID  *uint          `gorm:"index" json:"agendamentoId,omitempty"`
	Valor          float64        `gorm:"not null;default:0" json:"valor"`
	Descricao      string         `gorm:"size:500" json:"descricao"`
	DataOcorrencia time.Time      `gorm:"not null" json:"dataOcorrencia"`
	Confirmado     bool           `gorm:"not null;default:false;index" json:"confirmado"`

	// OrigemID aponta, em lançamentos de COMISSAO, para o lançamento de
	// RECEITA que originou a comissão.
	OrigemID *uint `gorm:"index" json:"origemId,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Lancamento{})
}
