// internal/lancamento/repository.go
package lancamento

import (
	"gorm.io/gorm"
)

// Repository encapsula operações de banco para Lancamento.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB retorna uma cópia do repo usando um *gorm.DB específico (ex.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

func (r *Repository) Create(l *Lancamento) error {
	return r.DB.Create(l).Error
}

func (r *Repository) FindByID(id uint) (*Lancamento, error) {
	var l Lancamento
	if err := r.DB.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// Confirmar marca o lançamento como confirmado. Idempotente: confirmar um
// lançamento já confirmado não tem efeito.
func (r *Repository) Confirmar(id uint) (*Lancamento, error) {
	l, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if l.Confirmado {
		return l, nil
	}
	if err := r.DB.Model(l).Update("confirmado", true).Error; err != nil {
		return nil, err
	}
	l.Confirmado = true
	return l, nil
}

// ListByBarbeiroID lista os lançamentos de um barbeiro, mais recentes primeiro.
func (r *Repository) ListByBarbeiroID(barbeiroID uint) ([]Lancamento, error) {
	var lancamentos []Lancamento
	err := r.DB.Where("barbeiro_id = ?", barbeiroID).
		Order("data_ocorrencia DESC").
		Find(&lancamentos).Error
	return lancamentos, err
}

// ListByTipo lista lançamentos por tipo, opcionalmente só confirmados.
func (r *Repository) ListByTipo(tipo string, somenteConfirmados bool) ([]Lancamento, error) {
	var lancamentos []Lancamento
	q := r.DB.Where("tipo = ?", tipo)
	if somenteConfirmados {
		q = q.Where("confirmado = ?", true)
	}
	err := q.Order("data_ocorrencia DESC").Find(&lancamentos).Error
	return lancamentos, err
}
