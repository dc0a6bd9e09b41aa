package lancamento

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validate = validator.New()

// Liquidador é o gancho para o motor de comissões. Implementado pelo serviço
// de comissão e injetado no main, para manter este pacote livre de ciclo de
// importação com o motor.
type Liquidador interface {
	LiquidarLancamento(l *Lancamento) error
}

// CreateLancamentoDTO é o payload do caixa (ponto de venda).
type CreateLancamentoDTO struct {
	Tipo           string  `json:"tipo" validate:"required,oneof=RECEITA DESPESA"`
	BarbeiroID     uint    `json:"barbeiroId" validate:"required"`
	ServicoID      *uint   `json:"servicoId"`
	AgendamentoID  *uint   `json:"agendamentoId"`
	Valor          float64 `json:"valor" validate:"gte=0"`
	Descricao      string  `json:"descricao"`
	DataOcorrencia string  `json:"dataOcorrencia" validate:"required"`
	Confirmado     bool    `json:"confirmado"`
}

// Handler gerencia rotas de lançamentos financeiros.
type Handler struct {
	Repo       *Repository
	Liquidador Liquidador
	Log        *zap.Logger
}

func NewHandler(repo *Repository, liquidador Liquidador, log *zap.Logger) *Handler {
	return &Handler{Repo: repo, Liquidador: liquidador, Log: log}
}

// Criar trata POST /lancamentos
// Se o lançamento já chega confirmado (venda à vista no caixa), a liquidação
// de comissão é disparada na mesma chamada.
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var dto CreateLancamentoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(&dto); err != nil {
		var problemas []string
		for _, fe := range err.(validator.ValidationErrors) {
			problemas = append(problemas, fmt.Sprintf("%s: falhou na regra '%s'", fe.Field(), fe.Tag()))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"erros": problemas})
		return
	}

	dataOcorrencia, err := time.Parse(time.RFC3339, dto.DataOcorrencia)
	if err != nil {
		http.Error(w, "dataOcorrencia inválida (use RFC3339)", http.StatusBadRequest)
		return
	}

	l := Lancamento{
		Tipo:           dto.Tipo,
		BarbeiroID:     dto.BarbeiroID,
		ServicoID:      dto.ServicoID,
		AgendamentoID:  dto.AgendamentoID,
		Valor:          dto.Valor,
		Descricao:      dto.Descricao,
		DataOcorrencia: dataOcorrencia,
		Confirmado:     dto.Confirmado,
	}
	if err := h.Repo.Create(&l); err != nil {
		http.Error(w, "Erro ao criar lançamento", http.StatusInternalServerError)
		return
	}

	if l.Confirmado && h.Liquidador != nil {
		if err := h.Liquidador.LiquidarLancamento(&l); err != nil {
			// A receita já está registrada; falha de liquidação é reportada
			// ao operador, não derruba a venda.
			h.Log.Error("falha ao liquidar comissão do lançamento",
				zap.Uint("lancamentoId", l.ID), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(l)
}

// Confirmar trata PATCH /lancamentos/{id}/confirmar
func (h *Handler) Confirmar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	l, err := h.Repo.Confirmar(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Lançamento não encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao confirmar lançamento", http.StatusInternalServerError)
		return
	}

	if h.Liquidador != nil {
		if err := h.Liquidador.LiquidarLancamento(l); err != nil {
			h.Log.Error("falha ao liquidar comissão do lançamento",
				zap.Uint("lancamentoId", l.ID), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(l)
}

// ListarPorBarbeiro trata GET /barbeiros/{id}/lancamentos
func (h *Handler) ListarPorBarbeiro(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de barbeiro inválido", http.StatusBadRequest)
		return
	}
	lancamentos, err := h.Repo.ListByBarbeiroID(uint(id))
	if err != nil {
		http.Error(w, "Erro ao buscar lançamentos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lancamentos)
}

// BuscarPorID trata GET /lancamentos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	l, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Lançamento não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(l)
}
