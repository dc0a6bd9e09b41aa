// internal/politicacomissao/model.go
package politicacomissao

import (
	"time"

	"gorm.io/gorm"
)

// PoliticaComissao define o percentual (e limites opcionais) de comissão de um
// barbeiro. Quando ServicoID é nulo a política é a "geral" do barbeiro, usada
// como fallback quando não existe política específica para o serviço.
//
// Unicidade: no máximo uma política ativa por par (barbeiro, serviço) e no
// máximo uma geral por barbeiro — garantida pelo Upsert do repositório.
type PoliticaComissao struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BarbeiroID  uint           `gorm:"not null;index:idx_politica_barbeiro_servico" json:"barbeiroId"`
	ServicoID   *uint          `gorm:"index:idx_politica_barbeiro_servico" json:"servicoId,omitempty"`
	Percentual  float64        `gorm:"not null;default:0" json:"percentual"`
	ValorMinimo *float64       `json:"valorMinimo,omitempty"`
	ValorMaximo *float64       `json:"valorMaximo,omitempty"`
	Ativa       bool           `gorm:"not null;default:true;index" json:"ativa"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&PoliticaComissao{})
}
