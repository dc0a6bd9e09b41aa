// internal/pagamento/webhook.go
package pagamento

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/NavalhaDigital/api-barbearia/internal/comissao"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Desfechos do processamento de um evento. Ignorado é distinto de Processado
// de propósito: "nada a fazer" não pode se confundir com falha engolida.
const (
	ResultadoProcessado = "PROCESSADO"
	ResultadoIgnorado   = "IGNORADO"
	ResultadoDuplicado  = "DUPLICADO"
)

// Resultado é o desfecho de um evento de webhook.
type Resultado struct {
	Desfecho string `json:"desfecho"`
	Mensagem string `json:"mensagem"`
}

// ErrAssinaturaInvalida indica token de webhook divergente em produção.
var ErrAssinaturaInvalida = errors.New("assinatura de webhook inválida")

// ErroPayloadInvalido carrega os campos obrigatórios ausentes do evento.
type ErroPayloadInvalido struct {
	Problemas []string
}

func (e *ErroPayloadInvalido) Error() string {
	return "payload de webhook inválido: " + strings.Join(e.Problemas, "; ")
}

// MapearStatusGateway traduz o vocabulário de status do gateway para o
// status local do espelho.
func MapearStatusGateway(status string) (string, bool) {
	switch status {
	case "PENDING", "AWAITING_RISK_ANALYSIS":
		return StatusPendente, true
	case "RECEIVED", "CONFIRMED", "RECEIVED_IN_CASH", "DUNNING_RECEIVED":
		return StatusRecebido, true
	case "OVERDUE", "DUNNING_REQUESTED":
		return StatusVencido, true
	case "REFUNDED", "REFUND_REQUESTED", "REFUND_IN_PROGRESS",
		"CHARGEBACK_REQUESTED", "CHARGEBACK_DISPUTE", "AWAITING_CHARGEBACK_REVERSAL":
		return StatusCancelado, true
	}
	return "", false
}

// Processor aplica eventos do gateway ao espelho local e dispara os efeitos
// no livro de comissões, no máximo uma vez por evento.
type Processor struct {
	Repo      *Repository
	Comissoes *comissao.Service
	Log       *zap.Logger

	// TokenWebhook é comparado com o header de autenticação do gateway.
	// Fora de produção a validação é dispensada: é a fronteira de confiança
	// explícita do ambiente sandbox, não um descuido.
	TokenWebhook string
	Producao     bool
}

func NewProcessor(db *gorm.DB, comissoes *comissao.Service, log *zap.Logger) *Processor {
	return &Processor{
		Repo:         NewRepository(db),
		Comissoes:    comissoes,
		Log:          log,
		TokenWebhook: os.Getenv("ASAAS_WEBHOOK_TOKEN"),
		Producao:     os.Getenv("APP_ENV") == "production",
	}
}

// Processar aplica um evento de webhook: valida, deduplica, espelha o status
// e dispara criação/cancelamento de comissão quando a transição exige.
//
// O registro do evento só é marcado como processado depois de todos os
// efeitos; um crash no meio deixa o evento reprocessável e todos os efeitos
// são upserts por chave estável, então a repetição converge.
func (p *Processor) Processar(dto *WebhookDTO, assinatura string, payloadBruto []byte) (*Resultado, error) {
	if problemas := dto.Validar(); len(problemas) > 0 {
		return nil, &ErroPayloadInvalido{Problemas: problemas}
	}

	if p.Producao && p.TokenWebhook != "" && assinatura != p.TokenWebhook {
		return nil, ErrAssinaturaInvalida
	}

	chave := dto.ChaveDeduplicacao()
	evento, aplicar, err := p.Repo.ObterOuCriarEvento(chave, dto.Event)
	if err != nil {
		return nil, fmt.Errorf("registro do evento %s: %w", chave, err)
	}
	if !aplicar {
		p.Log.Info("evento de webhook duplicado", zap.String("eventoId", chave))
		return &Resultado{Desfecho: ResultadoDuplicado, Mensagem: "evento já processado"}, nil
	}

	// Evento observado mas fora do vocabulário tratado: sucesso sem ação.
	statusLocal, conhecido := MapearStatusGateway(dto.Payment.Status)
	if !strings.HasPrefix(dto.Event, "PAYMENT_") || !conhecido {
		if err := p.Repo.MarcarProcessado(evento.ID, nil); err != nil {
			return nil, err
		}
		p.Log.Info("evento de webhook ignorado",
			zap.String("evento", dto.Event), zap.String("statusGateway", dto.Payment.Status))
		return &Resultado{Desfecho: ResultadoIgnorado, Mensagem: "evento sem tratamento"}, nil
	}

	var lancamentoID *uint
	if dto.Payment.ExternalReference != "" {
		if v, err := strconv.ParseUint(dto.Payment.ExternalReference, 10, 32); err == nil {
			id := uint(v)
			lancamentoID = &id
		}
	}

	espelho := &Pagamento{
		GatewayPaymentID: dto.Payment.ID,
		Cliente:          dto.Payment.Customer,
		Valor:            dto.Payment.Value,
		Status:           statusLocal,
		DataVencimento:   dto.Payment.DueDate,
		DataPagamento:    dto.Payment.PaymentDate,
		LancamentoID:     lancamentoID,
		UltimoPayload:    string(payloadBruto),
	}
	espelho, transicao, err := p.Repo.UpsertEspelho(espelho)
	if err != nil {
		msg := err.Error()
		_ = p.Repo.MarcarProcessado(evento.ID, &msg)
		return nil, fmt.Errorf("upsert do espelho %s: %w", dto.Payment.ID, err)
	}

	// Reentrega de um evento que falhou no meio: o espelho já pode estar no
	// status final sem transição nova, mas os efeitos ainda estão pendentes.
	reaplicar := evento.ErroProcesso != nil

	if err := p.aplicarEfeitos(espelho, transicao || reaplicar); err != nil {
		msg := err.Error()
		_ = p.Repo.MarcarProcessado(evento.ID, &msg)
		return nil, err
	}

	if err := p.Repo.MarcarProcessado(evento.ID, nil); err != nil {
		return nil, err
	}

	p.Log.Info("webhook processado",
		zap.String("eventoId", chave),
		zap.String("pagamento", dto.Payment.ID),
		zap.String("statusLocal", espelho.Status),
		zap.Bool("transicao", transicao),
	)
	return &Resultado{Desfecho: ResultadoProcessado, Mensagem: "espelho atualizado"}, nil
}

// aplicarEfeitos dispara os efeitos de livro ligados à transição de status.
func (p *Processor) aplicarEfeitos(espelho *Pagamento, transicao bool) error {
	if !transicao || espelho.LancamentoID == nil {
		return nil
	}

	switch espelho.Status {
	case StatusRecebido:
		// Caminho de confirmação de receita: idempotente, no máximo uma
		// comissão por lançamento.
		if _, err := p.Comissoes.ConfirmarELiquidar(*espelho.LancamentoID); err != nil {
			if errors.Is(err, comissao.ErrRegistroNaoEncontrado) {
				return fmt.Errorf("lançamento %d do externalReference não existe", *espelho.LancamentoID)
			}
			return fmt.Errorf("liquidação via webhook: %w", err)
		}
	case StatusCancelado:
		err := p.Comissoes.CancelarPorLancamento(*espelho.LancamentoID)
		if err != nil && !errors.Is(err, comissao.ErrRegistroNaoEncontrado) {
			return fmt.Errorf("cancelamento via webhook: %w", err)
		}
	}
	return nil
}
