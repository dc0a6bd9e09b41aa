// internal/pagamento/repository.go
package pagamento

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repository encapsula o acesso ao espelho de pagamentos e ao log de webhooks.
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

func (r *Repository) FindByGatewayID(gatewayPaymentID string) (*Pagamento, error) {
	var p Pagamento
	err := r.DB.Where("gateway_payment_id = ?", gatewayPaymentID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertEspelho cria ou atualiza o espelho pela chave do gateway. O status só
// anda para frente (ver ordemStatus). Sem transição, só o payload bruto e a
// hora de sincronismo são atualizados: um evento atrasado nunca sobrescreve
// valor ou data de pagamento de um estado mais avançado.
// Retorna o espelho e se houve transição efetiva de status.
func (r *Repository) UpsertEspelho(novo *Pagamento) (*Pagamento, bool, error) {
	agora := time.Now()
	novo.SincronizadoEm = &agora

	atual, err := r.FindByGatewayID(novo.GatewayPaymentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
		if err := r.DB.Create(novo).Error; err != nil {
			return nil, false, err
		}
		return novo, true, nil
	}

	transicao := false
	statusFinal := atual.Status
	if atual.Status != StatusCancelado {
		if novo.Status == StatusCancelado || ordemStatus[novo.Status] > ordemStatus[atual.Status] {
			statusFinal = novo.Status
			transicao = true
		}
	}

	updates := map[string]interface{}{
		"ultimo_payload":  novo.UltimoPayload,
		"sincronizado_em": novo.SincronizadoEm,
	}
	if transicao {
		updates["status"] = statusFinal
		updates["cliente"] = novo.Cliente
		updates["valor"] = novo.Valor
		updates["data_vencimento"] = novo.DataVencimento
		updates["data_pagamento"] = novo.DataPagamento
	}
	if novo.LancamentoID != nil && atual.LancamentoID == nil {
		updates["lancamento_id"] = novo.LancamentoID
	}
	if err := r.DB.Model(atual).Updates(updates).Error; err != nil {
		return nil, false, err
	}

	atual.UltimoPayload = novo.UltimoPayload
	atual.SincronizadoEm = novo.SincronizadoEm
	if transicao {
		atual.Status = statusFinal
		atual.Cliente = novo.Cliente
		atual.Valor = novo.Valor
		atual.DataVencimento = novo.DataVencimento
		atual.DataPagamento = novo.DataPagamento
	}
	if novo.LancamentoID != nil && atual.LancamentoID == nil {
		atual.LancamentoID = novo.LancamentoID
	}
	return atual, transicao, nil
}

// ObterOuCriarEvento devolve o registro do evento. O booleano indica se o
// evento é novo (ou ainda não processado) e os efeitos devem ser aplicados.
func (r *Repository) ObterOuCriarEvento(chave, eventType string) (*WebhookEvento, bool, error) {
	var ev WebhookEvento
	err := r.DB.Where("gateway_event_id = ?", chave).First(&ev).Error
	if err == nil {
		return &ev, !ev.Processado, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	ev = WebhookEvento{
		GatewayEventID: chave,
		EventType:      eventType,
		RecebidoEm:     time.Now(),
	}
	if err := r.DB.Create(&ev).Error; err != nil {
		return nil, false, err
	}
	return &ev, true, nil
}

// MarcarProcessado fecha o evento; com errMsg preenchido o evento permanece
// reprocessável (processado=false) com o erro registrado para o operador.
func (r *Repository) MarcarProcessado(id uint, errMsg *string) error {
	updates := map[string]interface{}{
		"processado":    errMsg == nil,
		"erro_processo": errMsg,
	}
	return r.DB.Model(&WebhookEvento{}).Where("id = ?", id).Updates(updates).Error
}

// ListByLancamentoID busca o espelho ligado a um lançamento.
func (r *Repository) ListByLancamentoID(lancamentoID uint) ([]Pagamento, error) {
	var pagamentos []Pagamento
	err := r.DB.Where("lancamento_id = ?", lancamentoID).Find(&pagamentos).Error
	return pagamentos, err
}

// ListEventosComErro lista eventos pendentes de reprocesso manual.
func (r *Repository) ListEventosComErro() ([]WebhookEvento, error) {
	var eventos []WebhookEvento
	err := r.DB.Where("processado = ? AND erro_processo IS NOT NULL", false).
		Order("recebido_em ASC").
		Find(&eventos).Error
	return eventos, err
}
