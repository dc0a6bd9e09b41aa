// internal/comissao/repository.go
package comissao

import (
	"gorm.io/gorm"
)

// Repository encapsula operações de banco para RegistroComissao e Ajuste.
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

func (r *Repository) Create(reg *RegistroComissao) error {
	return r.DB.Create(reg).Error
}

// FindAtivoByLancamentoID busca o registro não-cancelado de um lançamento.
// É a chave de idempotência da liquidação.
func (r *Repository) FindAtivoByLancamentoID(lancamentoID uint) (*RegistroComissao, error) {
	var reg RegistroComissao
	err := r.DB.Preload("Ajustes").
		Where("lancamento_id = ? AND status <> ?", lancamentoID, StatusCancelada).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByLancamentoID busca o registro mais recente de um lançamento,
// cancelado ou não.
func (r *Repository) FindByLancamentoID(lancamentoID uint) (*RegistroComissao, error) {
	var reg RegistroComissao
	err := r.DB.Preload("Ajustes").
		Where("lancamento_id = ?", lancamentoID).
		Order("id DESC").
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Repository) FindByID(id uint) (*RegistroComissao, error) {
	var reg RegistroComissao
	if err := r.DB.Preload("Ajustes").First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateStatus atualiza apenas o status de um registro.
func (r *Repository) UpdateStatus(id uint, status string) error {
	return r.DB.Model(&RegistroComissao{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateValor atualiza o valor corrente da comissão (após ajuste).
func (r *Repository) UpdateValor(id uint, valor float64) error {
	return r.DB.Model(&RegistroComissao{}).
		Where("id = ?", id).
		Update("valor_comissao", valor).Error
}

// CreateAjuste insere um ajuste (append-only).
func (r *Repository) CreateAjuste(a *Ajuste) error {
	return r.DB.Create(a).Error
}

// ListByBarbeiroID lista os registros de comissão de um barbeiro com os
// ajustes pré-carregados, mais recentes primeiro.
func (r *Repository) ListByBarbeiroID(barbeiroID uint) ([]RegistroComissao, error) {
	var registros []RegistroComissao
	err := r.DB.Preload("Ajustes").
		Where("barbeiro_id = ?", barbeiroID).
		Order("created_at DESC").
		Find(&registros).Error
	return registros, err
}

// ListByStatus lista registros por status (fila operacional do painel).
func (r *Repository) ListByStatus(status string) ([]RegistroComissao, error) {
	var registros []RegistroComissao
	err := r.DB.Preload("Ajustes").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&registros).Error
	return registros, err
}
