// internal/cobranca/service.go
package cobranca

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/NavalhaDigital/api-barbearia/internal/asaas"
	"github.com/NavalhaDigital/api-barbearia/internal/comissao"
	"github.com/NavalhaDigital/api-barbearia/internal/lancamento"
	"github.com/NavalhaDigital/api-barbearia/internal/pagamento"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrLancamentoNaoEncontrado indica cobrança apontando para lançamento inexistente.
var ErrLancamentoNaoEncontrado = errors.New("lançamento não encontrado")

// Service orquestra cobranças no gateway: cria a cobrança com o lançamento
// como externalReference e mantém o espelho local coerente com o retorno.
type Service struct {
	Gateway     *asaas.Client
	Lancamentos *lancamento.Repository
	Pagamentos  *pagamento.Repository
	Comissoes   *comissao.Service
	Log         *zap.Logger
}

func NewService(db *gorm.DB, gateway *asaas.Client, comissoes *comissao.Service, log *zap.Logger) *Service {
	return &Service{
		Gateway:     gateway,
		Lancamentos: lancamento.NewRepository(db),
		Pagamentos:  pagamento.NewRepository(db),
		Comissoes:   comissoes,
		Log:         log,
	}
}

// espelhar projeta o retorno do gateway no espelho local e aplica o efeito de
// comissão quando a cobrança transita para RECEBIDO. Mesmo caminho de
// confirmação usado pelo webhook; liquidação continua idempotente.
func (s *Service) espelhar(cob *asaas.Cobranca, lancamentoID *uint, payload string) (*pagamento.Pagamento, error) {
	statusLocal, conhecido := pagamento.MapearStatusGateway(cob.Status)
	if !conhecido {
		statusLocal = pagamento.StatusPendente
	}

	espelho := &pagamento.Pagamento{
		GatewayPaymentID: cob.ID,
		Cliente:          cob.Customer,
		Valor:            cob.Value,
		Status:           statusLocal,
		DataVencimento:   cob.DueDate,
		DataPagamento:    cob.PaymentDate,
		LancamentoID:     lancamentoID,
		UltimoPayload:    payload,
	}
	espelho, transicao, err := s.Pagamentos.UpsertEspelho(espelho)
	if err != nil {
		return nil, fmt.Errorf("upsert do espelho %s: %w", cob.ID, err)
	}

	if transicao && espelho.Status == pagamento.StatusRecebido && espelho.LancamentoID != nil {
		if _, err := s.Comissoes.ConfirmarELiquidar(*espelho.LancamentoID); err != nil &&
			!errors.Is(err, comissao.ErrRegistroNaoEncontrado) {
			return nil, fmt.Errorf("liquidação após recebimento: %w", err)
		}
	}
	return espelho, nil
}

// CriarParaLancamento cria a cobrança no gateway com externalReference
// apontando para o lançamento, e registra o espelho local como PENDENTE.
func (s *Service) CriarParaLancamento(ctx context.Context, lancamentoID uint, req *CriarCobrancaDTO) (*asaas.Cobranca, error) {
	l, err := s.Lancamentos.FindByID(lancamentoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLancamentoNaoEncontrado
		}
		return nil, err
	}

	cob, err := s.Gateway.CriarCobranca(ctx, &asaas.CriarCobrancaRequest{
		Customer:          req.Customer,
		BillingType:       req.BillingType,
		Value:             l.Valor,
		DueDate:           req.DueDate,
		Description:       req.Description,
		ExternalReference: fmt.Sprint(l.ID),
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.espelhar(cob, &l.ID, ""); err != nil {
		// Cobrança existe no gateway; o espelho será corrigido pelo webhook
		// de PAYMENT_CREATED. Só registra a divergência.
		s.Log.Error("cobrança criada mas espelho falhou",
			zap.String("cobrancaId", cob.ID), zap.Error(err))
	}

	s.Log.Info("cobrança criada",
		zap.String("cobrancaId", cob.ID), zap.Uint("lancamentoId", l.ID))
	return cob, nil
}

// ReceberEmDinheiro confirma recebimento em espécie no gateway e faz a
// confirmação de receita fluir pelo mesmo caminho do webhook.
func (s *Service) ReceberEmDinheiro(ctx context.Context, gatewayID string) (*pagamento.Pagamento, error) {
	var (
		valor        float64
		lancamentoID *uint
	)
	if espelho, err := s.Pagamentos.FindByGatewayID(gatewayID); err == nil {
		valor = espelho.Valor
		lancamentoID = espelho.LancamentoID
	} else {
		// Sem espelho local, o valor tem que vir do gateway; confirmar um
		// recebimento com valor zero é pior do que falhar.
		cob, errGateway := s.Gateway.BuscarCobranca(ctx, gatewayID)
		if errGateway != nil {
			return nil, fmt.Errorf("cobrança %s não localizada para recebimento em dinheiro: %w", gatewayID, errGateway)
		}
		valor = cob.Value
		if cob.ExternalReference != "" {
			if v, errRef := strconv.ParseUint(cob.ExternalReference, 10, 32); errRef == nil {
				id := uint(v)
				lancamentoID = &id
			}
		}
	}

	cob, err := s.Gateway.ConfirmarRecebimentoEmDinheiro(ctx, gatewayID, &asaas.RecebimentoEmDinheiroRequest{
		PaymentDate:    time.Now().Format("2006-01-02"),
		Value:          valor,
		NotifyCustomer: false,
	})
	if err != nil {
		return nil, err
	}
	return s.espelhar(cob, lancamentoID, "")
}
