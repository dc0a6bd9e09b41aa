package comissao

import (
	"fmt"
	"testing"
	"time"

	"github.com/NavalhaDigital/api-barbearia/internal/lancamento"
	"github.com/NavalhaDigital/api-barbearia/internal/notificacao"
	"github.com/NavalhaDigital/api-barbearia/internal/politicacomissao"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, politicacomissao.Migrate(db))
	require.NoError(t, lancamento.Migrate(db))
	require.NoError(t, Migrate(db))
	return db
}

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db := setupDB(t)
	alertas := &notificacao.Cliente{Log: zap.NewNop()}
	return NewService(db, alertas, zap.NewNop()), db
}

func seedPolitica(t *testing.T, db *gorm.DB, barbeiroID uint, servicoID *uint, pct float64, min, max *float64) politicacomissao.PoliticaComissao {
	p := politicacomissao.PoliticaComissao{
		BarbeiroID:  barbeiroID,
		ServicoID:   servicoID,
		Percentual:  pct,
		ValorMinimo: min,
		ValorMaximo: max,
		Ativa:       true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedReceita(t *testing.T, db *gorm.DB, barbeiroID uint, servicoID *uint, valor float64, confirmado bool) *lancamento.Lancamento {
	l := lancamento.Lancamento{
		Tipo:           lancamento.TipoReceita,
		BarbeiroID:     barbeiroID,
		ServicoID:      servicoID,
		Valor:          valor,
		DataOcorrencia: time.Now(),
		Confirmado:     confirmado,
	}
	require.NoError(t, db.Create(&l).Error)
	return &l
}

func TestMigrate_BancoRejeitaSegundoRegistroAtivo(t *testing.T) {
	db := setupDB(t)

	primeiro := RegistroComissao{LancamentoID: 1, BarbeiroID: 1, PoliticaID: 1,
		ValorComissao: 10, Status: StatusLiquidada}
	require.NoError(t, db.Create(&primeiro).Error)

	// Segundo registro não-cancelado do mesmo lançamento viola o índice
	// único parcial, mesmo fora do caminho do serviço.
	segundo := RegistroComissao{LancamentoID: 1, BarbeiroID: 1, PoliticaID: 1,
		ValorComissao: 10, Status: StatusCalculada}
	require.Error(t, db.Create(&segundo).Error)

	// Cancelado sai do índice: estorno libera nova liquidação.
	require.NoError(t, db.Model(&primeiro).Update("status", StatusCancelada).Error)
	terceiro := RegistroComissao{LancamentoID: 1, BarbeiroID: 1, PoliticaID: 1,
		ValorComissao: 10, Status: StatusCalculada}
	require.NoError(t, db.Create(&terceiro).Error)
}

func TestLiquidar_ConvergeQuandoPerdeACorrida(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)

	// Simula a liquidação concorrente que venceu a corrida gravando o
	// registro por fora, depois da consulta de idempotência do serviço.
	concorrente := RegistroComissao{LancamentoID: l.ID, BarbeiroID: 1, PoliticaID: 1,
		ValorServico: 100, PercentualAplicado: 10, ValorComissao: 10, Status: StatusLiquidada}
	require.NoError(t, db.Create(&concorrente).Error)

	reg, err := svc.Liquidar(l)
	require.NoError(t, err)
	assert.Equal(t, concorrente.ID, reg.ID)

	var total int64
	require.NoError(t, db.Model(&RegistroComissao{}).Where("lancamento_id = ?", l.ID).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestLiquidar_CriaRegistroLiquidado(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 40, nil, nil)
	l := seedReceita(t, db, 1, nil, 80, true)

	reg, err := svc.Liquidar(l)
	require.NoError(t, err)
	require.NotNil(t, reg)

	assert.Equal(t, StatusLiquidada, reg.Status)
	assert.Equal(t, 32.0, reg.ValorComissao)
	assert.Equal(t, 40.0, reg.PercentualAplicado)
	assert.Equal(t, l.ID, reg.LancamentoID)

	// Trilha de auditoria: lançamento de COMISSAO apontando para a origem.
	var auditoria lancamento.Lancamento
	require.NoError(t, db.Where("tipo = ? AND origem_id = ?", lancamento.TipoComissao, l.ID).First(&auditoria).Error)
	assert.Equal(t, 32.0, auditoria.Valor)
	assert.True(t, auditoria.Confirmado)
}

func TestLiquidar_Idempotente(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)

	primeiro, err := svc.Liquidar(l)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		outro, err := svc.Liquidar(l)
		require.NoError(t, err)
		assert.Equal(t, primeiro.ID, outro.ID)
		assert.Equal(t, primeiro.ValorComissao, outro.ValorComissao)
	}

	var total int64
	require.NoError(t, db.Model(&RegistroComissao{}).Where("lancamento_id = ?", l.ID).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestLiquidar_IgnoraNaoConfirmadoENaoReceita(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)

	naoConfirmado := seedReceita(t, db, 1, nil, 100, false)
	reg, err := svc.Liquidar(naoConfirmado)
	require.NoError(t, err)
	assert.Nil(t, reg)

	despesa := &lancamento.Lancamento{
		Tipo: lancamento.TipoDespesa, BarbeiroID: 1, Valor: 50,
		DataOcorrencia: time.Now(), Confirmado: true,
	}
	require.NoError(t, db.Create(despesa).Error)
	reg, err = svc.Liquidar(despesa)
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestLiquidar_FallbackParaPoliticaGeral(t *testing.T) {
	svc, db := setupService(t)
	servicoID := uint(7)
	seedPolitica(t, db, 1, nil, 25, nil, nil) // só a geral existe
	l := seedReceita(t, db, 1, &servicoID, 100, true)

	reg, err := svc.Liquidar(l)
	require.NoError(t, err)
	assert.Equal(t, 25.0, reg.ValorComissao)
}

func TestLiquidar_PoliticaEspecificaVenceAGeral(t *testing.T) {
	svc, db := setupService(t)
	servicoID := uint(7)
	seedPolitica(t, db, 1, nil, 25, nil, nil)
	seedPolitica(t, db, 1, &servicoID, 50, nil, nil)
	l := seedReceita(t, db, 1, &servicoID, 100, true)

	reg, err := svc.Liquidar(l)
	require.NoError(t, err)
	assert.Equal(t, 50.0, reg.ValorComissao)
}

func TestLiquidar_SemPoliticaEhFatal(t *testing.T) {
	svc, db := setupService(t)
	l := seedReceita(t, db, 99, nil, 100, true)

	reg, err := svc.Liquidar(l)
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, politicacomissao.ErrPoliticaNaoEncontrada)

	var total int64
	require.NoError(t, db.Model(&RegistroComissao{}).Count(&total).Error)
	assert.EqualValues(t, 0, total)
}

func TestLiquidar_AplicaLimitesDoContrato(t *testing.T) {
	// Cenário do contrato: {15%, min 5, max 50} sobre 20.00 -> 5.00.
	svc, db := setupService(t)
	min, max := 5.0, 50.0
	seedPolitica(t, db, 1, nil, 15, &min, &max)
	l := seedReceita(t, db, 1, nil, 20, true)

	reg, err := svc.Liquidar(l)
	require.NoError(t, err)
	assert.Equal(t, 5.0, reg.ValorComissao)
}

func TestConfirmarELiquidar(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, false)

	reg, err := svc.ConfirmarELiquidar(l.ID)
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, 10.0, reg.ValorComissao)

	// Chamada repetida converge para o mesmo registro.
	outra, err := svc.ConfirmarELiquidar(l.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, outra.ID)
}

func TestConfirmarELiquidar_LancamentoInexistente(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.ConfirmarELiquidar(12345)
	assert.ErrorIs(t, err, ErrRegistroNaoEncontrado)
}

func TestAplicarAjuste_Bonus(t *testing.T) {
	svc, db := setupService(t)
	min, max := 5.0, 50.0
	seedPolitica(t, db, 1, nil, 15, &min, &max)
	l := seedReceita(t, db, 1, nil, 20, true)
	_, err := svc.Liquidar(l)
	require.NoError(t, err)

	// Cenário do contrato: BONUS delta=10 sobre 5.00 -> 15.00.
	ajuste, err := svc.AplicarAjuste(l.ID, AjusteBonus, 10, "meta batida", "usuario:1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, ajuste.ValorAntes)
	assert.Equal(t, 15.0, ajuste.ValorDepois)

	reg, err := svc.Registros.FindAtivoByLancamentoID(l.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, reg.ValorComissao)
	assert.Len(t, reg.Ajustes, 1)
}

func TestAplicarAjuste_DescontoComPisoZero(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)
	_, err := svc.Liquidar(l)
	require.NoError(t, err)

	ajuste, err := svc.AplicarAjuste(l.ID, AjusteDesconto, -500, "estorno parcial", "usuario:1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, ajuste.ValorAntes)
	assert.Equal(t, 0.0, ajuste.ValorDepois)
}

func TestAplicarAjuste_CorrecaoSubstituiValor(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)
	_, err := svc.Liquidar(l)
	require.NoError(t, err)

	ajuste, err := svc.AplicarAjuste(l.ID, AjusteCorrecao, -7.5, "valor acordado", "usuario:1")
	require.NoError(t, err)
	assert.Equal(t, 7.5, ajuste.ValorDepois)
}

func TestAplicarAjuste_PreservaValorOriginalNoPrimeiroAjuste(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)
	_, err := svc.Liquidar(l)
	require.NoError(t, err)

	_, err = svc.AplicarAjuste(l.ID, AjusteBonus, 5, "a", "usuario:1")
	require.NoError(t, err)
	_, err = svc.AplicarAjuste(l.ID, AjusteDesconto, 3, "b", "usuario:1")
	require.NoError(t, err)

	reg, err := svc.Registros.FindAtivoByLancamentoID(l.ID)
	require.NoError(t, err)
	require.Len(t, reg.Ajustes, 2)
	assert.Equal(t, 10.0, reg.Ajustes[0].ValorAntes) // valor calculado original
	assert.Equal(t, 15.0, reg.Ajustes[1].ValorAntes)
	assert.Equal(t, 12.0, reg.ValorComissao)
}

func TestAplicarAjuste_RegistroInexistente(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.AplicarAjuste(999, AjusteBonus, 10, "x", "usuario:1")
	assert.ErrorIs(t, err, ErrRegistroNaoEncontrado)
}

func TestAplicarAjuste_TipoInvalido(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)
	_, err := svc.Liquidar(l)
	require.NoError(t, err)

	_, err = svc.AplicarAjuste(l.ID, "REAJUSTE", 10, "x", "usuario:1")
	assert.ErrorIs(t, err, ErrTipoAjusteInvalido)
}

func TestAplicarAjuste_RegistroCanceladoRejeita(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)
	_, err := svc.Liquidar(l)
	require.NoError(t, err)
	require.NoError(t, svc.CancelarPorLancamento(l.ID))

	_, err = svc.AplicarAjuste(l.ID, AjusteBonus, 10, "x", "usuario:1")
	assert.ErrorIs(t, err, ErrRegistroCancelado)
}

func TestCancelarPorLancamento(t *testing.T) {
	svc, db := setupService(t)
	seedPolitica(t, db, 1, nil, 10, nil, nil)
	l := seedReceita(t, db, 1, nil, 100, true)
	reg, err := svc.Liquidar(l)
	require.NoError(t, err)

	require.NoError(t, svc.CancelarPorLancamento(l.ID))

	// Histórico preservado, só o status muda.
	cancelado, err := svc.Registros.FindByLancamentoID(l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelada, cancelado.Status)
	assert.Equal(t, reg.ID, cancelado.ID)

	// Cancelar de novo é no-op sinalizado.
	assert.ErrorIs(t, svc.CancelarPorLancamento(l.ID), ErrRegistroNaoEncontrado)
}
