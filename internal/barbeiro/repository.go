package barbeiro

import (
	"gorm.io/gorm"
)

type Repository interface {
	BuscarPorEmailOuCPF(db *gorm.DB, valor string) (*Barbeiro, error)
	Salvar(db *gorm.DB, b *Barbeiro) error
	BuscarPorID(db *gorm.DB, id uint) (*Barbeiro, error)
	ListarTodos(db *gorm.DB) ([]Barbeiro, error)
	Deletar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Busca primeiro por e-mail, depois por CPF, para evitar ambiguidade.
func (r *repositoryImpl) BuscarPorEmailOuCPF(db *gorm.DB, valor string) (*Barbeiro, error) {
	var b Barbeiro

	if err := db.Where("email = ?", valor).First(&b).Error; err == nil {
		return &b, nil
	}
	if err := db.Where("cpf = ?", valor).First(&b).Error; err == nil {
		return &b, nil
	}

	return nil, gorm.ErrRecordNotFound
}

func (r *repositoryImpl) Salvar(db *gorm.DB, b *Barbeiro) error {
	return db.Save(b).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Barbeiro, error) {
	var b Barbeiro
	if err := db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB) ([]Barbeiro, error) {
	var barbeiros []Barbeiro
	err := db.Order("nome ASC").Find(&barbeiros).Error
	return barbeiros, err
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Delete(&Barbeiro{}, id).Error
}
