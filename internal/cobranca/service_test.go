package cobranca

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NavalhaDigital/api-barbearia/internal/asaas"
	"github.com/NavalhaDigital/api-barbearia/internal/comissao"
	"github.com/NavalhaDigital/api-barbearia/internal/lancamento"
	"github.com/NavalhaDigital/api-barbearia/internal/notificacao"
	"github.com/NavalhaDigital/api-barbearia/internal/pagamento"
	"github.com/NavalhaDigital/api-barbearia/internal/politicacomissao"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCobranca(t *testing.T, gatewayHandler http.Handler) (*Service, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, politicacomissao.Migrate(db))
	require.NoError(t, lancamento.Migrate(db))
	require.NoError(t, comissao.Migrate(db))
	require.NoError(t, pagamento.Migrate(db))

	srv := httptest.NewServer(gatewayHandler)
	t.Cleanup(srv.Close)

	gateway := asaas.NewClient(asaas.Config{
		BaseURL:       srv.URL,
		AccessToken:   "token-de-teste",
		ClienteID:     "api-barbearia-teste",
		Timeout:       2 * time.Second,
		MaxTentativas: 1,
		DelayInicial:  1 * time.Millisecond,
		DelayMaximo:   5 * time.Millisecond,
	}, zap.NewNop())

	comissoes := comissao.NewService(db, &notificacao.Cliente{Log: zap.NewNop()}, zap.NewNop())
	return NewService(db, gateway, comissoes, zap.NewNop()), db
}

func seedReceita(t *testing.T, db *gorm.DB, valor float64) *lancamento.Lancamento {
	politica := politicacomissao.PoliticaComissao{BarbeiroID: 1, Percentual: 40, Ativa: true}
	require.NoError(t, db.Create(&politica).Error)
	l := lancamento.Lancamento{
		Tipo:           lancamento.TipoReceita,
		BarbeiroID:     1,
		Valor:          valor,
		DataOcorrencia: time.Now(),
	}
	require.NoError(t, db.Create(&l).Error)
	return &l
}

func TestCriarParaLancamento_ValorVemDoLancamento(t *testing.T) {
	var recebido asaas.CriarCobrancaRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recebido))
		json.NewEncoder(w).Encode(asaas.Cobranca{
			ID: "pay_1", Status: "PENDING", Value: recebido.Value,
			ExternalReference: recebido.ExternalReference,
		})
	})

	svc, db := setupCobranca(t, handler)
	l := seedReceita(t, db, 80)

	cob, err := svc.CriarParaLancamento(context.Background(), l.ID, &CriarCobrancaDTO{
		Customer: "cus_1", BillingType: "PIX", DueDate: "2026-09-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", cob.ID)
	assert.Equal(t, 80.0, recebido.Value)
	assert.Equal(t, fmt.Sprint(l.ID), recebido.ExternalReference)

	espelho, err := svc.Pagamentos.FindByGatewayID("pay_1")
	require.NoError(t, err)
	assert.Equal(t, pagamento.StatusPendente, espelho.Status)
	require.NotNil(t, espelho.LancamentoID)
	assert.Equal(t, l.ID, *espelho.LancamentoID)
}

func TestCriarParaLancamento_Inexistente(t *testing.T) {
	svc, _ := setupCobranca(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway não deveria ser chamado")
	}))

	_, err := svc.CriarParaLancamento(context.Background(), 999, &CriarCobrancaDTO{
		Customer: "cus_1", BillingType: "PIX", DueDate: "2026-09-01",
	})
	assert.ErrorIs(t, err, ErrLancamentoNaoEncontrado)
}

func TestReceberEmDinheiro_LiquidaPeloEspelho(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req asaas.RecebimentoEmDinheiroRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 80.0, req.Value)
		json.NewEncoder(w).Encode(asaas.Cobranca{
			ID: "pay_1", Status: "RECEIVED_IN_CASH", Value: req.Value,
			PaymentDate: req.PaymentDate,
		})
	})

	svc, db := setupCobranca(t, handler)
	l := seedReceita(t, db, 80)

	inicial := &pagamento.Pagamento{
		GatewayPaymentID: "pay_1",
		Valor:            80,
		Status:           pagamento.StatusPendente,
		LancamentoID:     &l.ID,
	}
	_, _, err := svc.Pagamentos.UpsertEspelho(inicial)
	require.NoError(t, err)

	espelho, err := svc.ReceberEmDinheiro(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, pagamento.StatusRecebido, espelho.Status)

	reg, err := svc.Comissoes.Registros.FindAtivoByLancamentoID(l.ID)
	require.NoError(t, err)
	assert.Equal(t, 32.0, reg.ValorComissao)
}

func TestReceberEmDinheiro_CobrancaNaoLocalizadaFalha(t *testing.T) {
	var confirmacoes int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			confirmacoes++
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"code":"not_found","description":"cobrança inexistente"}]}`))
	})

	svc, _ := setupCobranca(t, handler)

	// Sem espelho local e com o gateway negando a busca, nenhuma confirmação
	// de valor zero pode ser enviada.
	_, err := svc.ReceberEmDinheiro(context.Background(), "pay_fantasma")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pay_fantasma")
	assert.Zero(t, confirmacoes)
}
