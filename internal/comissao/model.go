// internal/comissao/model.go
package comissao

import (
	"time"

	"gorm.io/gorm"
)

// Status de um registro de comissão.
const (
	StatusCalculada = "CALCULADA"
	StatusLiquidada = "LIQUIDADA"
	StatusCancelada = "CANCELADA"
)

// Tipos de ajuste manual.
const (
	AjusteBonus    = "BONUS"
	AjusteDesconto = "DESCONTO"
	AjusteCorrecao = "CORRECAO"
)

// RegistroComissao é a comissão calculada para um lançamento de receita.
// Invariante: no máximo um registro não-cancelado por LancamentoID, garantido
// pelo índice único parcial criado em Migrate.
type RegistroComissao struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	LancamentoID       uint    `gorm:"not null;index" json:"lancamentoId"`
	BarbeiroID         uint    `gorm:"not null;index" json:"barbeiroId"`
	PoliticaID         uint    `gorm:"not null" json:"politicaId"`
	ValorServico       float64 `gorm:"not null;default:0" json:"valorServico"`
	PercentualAplicado float64 `gorm:"not null;default:0" json:"percentualAplicado"`
	ValorComissao      float64 `gorm:"not null;default:0" json:"valorComissao"`
	Status             string  `gorm:"size:20;not null;default:'CALCULADA';index" json:"status"`

	Ajustes []Ajuste `gorm:"foreignKey:RegistroComissaoID;constraint:OnDelete:CASCADE" json:"ajustes"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Ajuste é uma correção manual aplicada a um registro já liquidado.
// Append-only: nunca é alterado depois de criado. O ValorAntes do primeiro
// ajuste preserva o valor calculado original para replay de auditoria.
type Ajuste struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RegistroComissaoID uint      `gorm:"not null;index" json:"registroComissaoId"`
	Tipo               string    `gorm:"size:20;not null" json:"tipo"`
	Delta              float64   `gorm:"not null;default:0" json:"delta"`
	Motivo             string    `gorm:"size:500;not null" json:"motivo"`
	AprovadoPor        string    `gorm:"size:255;not null" json:"aprovadoPor"`
	ValorAntes         float64   `gorm:"not null" json:"valorAntes"`
	ValorDepois        float64   `gorm:"not null" json:"valorDepois"`
	AplicadoEm         time.Time `gorm:"not null" json:"aplicadoEm"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&RegistroComissao{}, &Ajuste{}); err != nil {
		return err
	}
	// Índice único parcial: o banco rejeita o segundo registro não-cancelado
	// do mesmo lançamento, mesmo com liquidações concorrentes. Registros
	// cancelados ficam de fora para permitir nova liquidação após estorno.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_registro_comissao_ativo
		ON registro_comissaos (lancamento_id)
		WHERE status <> 'CANCELADA' AND deleted_at IS NULL`).Error
}
