package politicacomissao

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) *Repository {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewRepository(db)
}

func criarPolitica(t *testing.T, repo *Repository, barbeiroID uint, servicoID *uint, pct float64) PoliticaComissao {
	p := PoliticaComissao{BarbeiroID: barbeiroID, ServicoID: servicoID, Percentual: pct, Ativa: true}
	require.NoError(t, repo.DB.Create(&p).Error)
	return p
}

func TestResolver_EspecificaTemPrecedencia(t *testing.T) {
	repo := setupRepo(t)
	servicoID := uint(3)
	criarPolitica(t, repo, 1, nil, 30)
	especifica := criarPolitica(t, repo, 1, &servicoID, 50)

	p, err := repo.Resolver(1, &servicoID)
	require.NoError(t, err)
	assert.Equal(t, especifica.ID, p.ID)
	assert.Equal(t, 50.0, p.Percentual)
}

func TestResolver_FallbackParaGeral(t *testing.T) {
	repo := setupRepo(t)
	servicoID := uint(3)
	geral := criarPolitica(t, repo, 1, nil, 30)

	p, err := repo.Resolver(1, &servicoID)
	require.NoError(t, err)
	assert.Equal(t, geral.ID, p.ID)
}

func TestResolver_SemServicoUsaGeral(t *testing.T) {
	repo := setupRepo(t)
	servicoID := uint(3)
	criarPolitica(t, repo, 1, &servicoID, 50)
	geral := criarPolitica(t, repo, 1, nil, 30)

	p, err := repo.Resolver(1, nil)
	require.NoError(t, err)
	assert.Equal(t, geral.ID, p.ID)
}

func TestResolver_NenhumaPolitica(t *testing.T) {
	repo := setupRepo(t)
	servicoID := uint(3)

	_, err := repo.Resolver(1, &servicoID)
	assert.ErrorIs(t, err, ErrPoliticaNaoEncontrada)

	_, err = repo.Resolver(1, nil)
	assert.ErrorIs(t, err, ErrPoliticaNaoEncontrada)
}

func TestResolver_IgnoraInativas(t *testing.T) {
	repo := setupRepo(t)
	p := criarPolitica(t, repo, 1, nil, 30)
	require.NoError(t, repo.Desativar(p.ID))

	_, err := repo.Resolver(1, nil)
	assert.ErrorIs(t, err, ErrPoliticaNaoEncontrada)
}

func TestUpsert_CriaQuandoNaoExiste(t *testing.T) {
	repo := setupRepo(t)
	nova := PoliticaComissao{BarbeiroID: 1, Percentual: 40}
	require.NoError(t, repo.Upsert(&nova))
	assert.NotZero(t, nova.ID)
	assert.True(t, nova.Ativa)
}

func TestUpsert_SubstituiNoMesmoRegistro(t *testing.T) {
	repo := setupRepo(t)
	original := criarPolitica(t, repo, 1, nil, 30)

	min := 5.0
	nova := PoliticaComissao{BarbeiroID: 1, Percentual: 45, ValorMinimo: &min}
	require.NoError(t, repo.Upsert(&nova))

	// O ID é preservado: nunca existem duas políticas ativas do mesmo par.
	assert.Equal(t, original.ID, nova.ID)

	var total int64
	require.NoError(t, repo.DB.Model(&PoliticaComissao{}).
		Where("barbeiro_id = ? AND servico_id IS NULL AND ativa = ?", 1, true).
		Count(&total).Error)
	assert.EqualValues(t, 1, total)

	p, err := repo.Resolver(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 45.0, p.Percentual)
	require.NotNil(t, p.ValorMinimo)
	assert.Equal(t, 5.0, *p.ValorMinimo)
}

func TestUpsert_ParesDistintosNaoColidem(t *testing.T) {
	repo := setupRepo(t)
	servicoID := uint(3)
	geral := PoliticaComissao{BarbeiroID: 1, Percentual: 30}
	require.NoError(t, repo.Upsert(&geral))
	especifica := PoliticaComissao{BarbeiroID: 1, ServicoID: &servicoID, Percentual: 50}
	require.NoError(t, repo.Upsert(&especifica))

	assert.NotEqual(t, geral.ID, especifica.ID)
}

func TestDesativar_Inexistente(t *testing.T) {
	repo := setupRepo(t)
	assert.ErrorIs(t, repo.Desativar(999), gorm.ErrRecordNotFound)
}
