// internal/servico/model.go
package servico

import (
	"time"

	"gorm.io/gorm"
)

// Servico representa um serviço do catálogo da barbearia (corte, barba, etc).
type Servico struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Nome           string         `gorm:"size:255;not null" json:"nome"`
	Descricao      string         `gorm:"size:500" json:"descricao"`
	Valor          float64        `gorm:"not null;default:0" json:"valor"`
	DuracaoMinutos int            `gorm:"not null;default:30" json:"duracaoMinutos"`
	Ativo          bool           `gorm:"not null;default:true" json:"ativo"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Servico{})
}
