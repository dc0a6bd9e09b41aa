// internal/politicacomissao/repository.go
package politicacomissao

import (
	"errors"

	"gorm.io/gorm"
)

// ErrPoliticaNaoEncontrada indica que nem a política específica do serviço nem
// a geral do barbeiro existem. É fatal para a liquidação do evento: nenhum
// percentual padrão é assumido silenciosamente.
var ErrPoliticaNaoEncontrada = errors.New("política de comissão não encontrada")

// Repository encapsula operações de banco para PoliticaComissao.
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

// findAtiva busca a política ativa de um par exato (barbeiro, serviço),
// onde servicoID nulo significa a política geral.
func (r *Repository) findAtiva(barbeiroID uint, servicoID *uint) (*PoliticaComissao, error) {
	var p PoliticaComissao
	q := r.DB.Where("barbeiro_id = ? AND ativa = ?", barbeiroID, true)
	if servicoID != nil {
		q = q.Where("servico_id = ?", *servicoID)
	} else {
		q = q.Where("servico_id IS NULL")
	}
	if err := q.First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Resolver devolve a política aplicável a um par (barbeiro, serviço): primeiro
// a específica do serviço, depois a geral do barbeiro como fallback. Retorna
// ErrPoliticaNaoEncontrada quando nenhuma das duas existe.
func (r *Repository) Resolver(barbeiroID uint, servicoID *uint) (*PoliticaComissao, error) {
	if servicoID != nil {
		p, err := r.findAtiva(barbeiroID, servicoID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	p, err := r.findAtiva(barbeiroID, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoliticaNaoEncontrada
		}
		return nil, err
	}
	return p, nil
}

// Upsert cria ou substitui a política ativa do par (barbeiro, serviço).
// Substituição é feita no próprio registro, preservando o ID; nunca há duas
// políticas ativas para o mesmo par.
func (r *Repository) Upsert(nova *PoliticaComissao) error {
	existente, err := r.findAtiva(nova.BarbeiroID, nova.ServicoID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		nova.Ativa = true
		return r.DB.Create(nova).Error
	}

	existente.Percentual = nova.Percentual
	existente.ValorMinimo = nova.ValorMinimo
	existente.ValorMaximo = nova.ValorMaximo
	existente.Ativa = true
	if err := r.DB.Save(existente).Error; err != nil {
		return err
	}
	*nova = *existente
	return nil
}

// Desativar marca a política como inativa; políticas nunca são deletadas
// enquanto referenciadas por registros de comissão.
func (r *Repository) Desativar(id uint) error {
	res := r.DB.Model(&PoliticaComissao{}).Where("id = ?", id).Update("ativa", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByBarbeiroID lista todas as políticas (ativas ou não) de um barbeiro.
func (r *Repository) ListByBarbeiroID(barbeiroID uint) ([]PoliticaComissao, error) {
	var politicas []PoliticaComissao
	err := r.DB.Where("barbeiro_id = ?", barbeiroID).
		Order("servico_id ASC NULLS FIRST").
		Find(&politicas).Error
	return politicas, err
}

// FindByID busca uma política pelo ID.
func (r *Repository) FindByID(id uint) (*PoliticaComissao, error) {
	var p PoliticaComissao
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
