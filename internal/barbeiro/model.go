package barbeiro

import (
	"gorm.io/gorm"
)

// Barbeiro representa um profissional da barbearia que recebe comissão
// sobre os serviços executados.
type Barbeiro struct {
	gorm.Model
	Nome                  string `json:"nome"`
	Sobrenome             string `json:"sobrenome"`
	CPF                   string `json:"cpf" gorm:"unique"`
	Email                 string `json:"email" gorm:"unique"`
	Telefone              string `json:"telefone"`
	Foto                  string `json:"foto"`
	Senha                 string `json:"-"`
	IsAdmin               bool   `json:"isAdmin"`
	Ativo                 bool   `json:"ativo" gorm:"not null;default:true"`
	PrecisaRedefinirSenha bool   `json:"-"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Barbeiro{})
}
