package comissao

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NavalhaDigital/api-barbearia/internal/auth"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

var validate = validator.New()

// Handler gerencia as rotas de comissão (consulta, ajustes, reprocesso).
type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// ListarPorBarbeiro trata GET /barbeiros/{id}/comissoes
func (h *Handler) ListarPorBarbeiro(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de barbeiro inválido", http.StatusBadRequest)
		return
	}
	registros, err := h.Service.Registros.ListByBarbeiroID(uint(id))
	if err != nil {
		http.Error(w, "Erro ao buscar comissões", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registros)
}

// BuscarPorLancamento trata GET /lancamentos/{id}/comissao
func (h *Handler) BuscarPorLancamento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de lançamento inválido", http.StatusBadRequest)
		return
	}
	registro, err := h.Service.Registros.FindByLancamentoID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Comissão não encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao buscar comissão", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registro)
}

// AplicarAjuste trata POST /lancamentos/{id}/ajustes (admin)
func (h *Handler) AplicarAjuste(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de lançamento inválido", http.StatusBadRequest)
		return
	}

	var dto AplicarAjusteDTO
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

	aprovadoPor := "desconhecido"
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		aprovadoPor = fmt.Sprintf("usuario:%d", userID)
	}

	ajuste, err := h.Service.AplicarAjuste(uint(id), dto.Tipo, dto.Delta, dto.Motivo, aprovadoPor)
	if err != nil {
		switch {
		case errors.Is(err, ErrRegistroNaoEncontrado):
			http.Error(w, "Comissão não encontrada para o lançamento", http.StatusNotFound)
		case errors.Is(err, ErrRegistroCancelado):
			http.Error(w, "Comissão cancelada não aceita ajustes", http.StatusConflict)
		case errors.Is(err, ErrTipoAjusteInvalido):
			http.Error(w, "Tipo de ajuste inválido", http.StatusBadRequest)
		default:
			http.Error(w, "Erro ao aplicar ajuste", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ajuste)
}

// Reprocessar trata POST /lancamentos/{id}/liquidar (admin)
// Usado pelo operador para reprocessar um lançamento que falhou (ex.: após
// cadastrar a política que faltava). A liquidação é idempotente.
func (h *Handler) Reprocessar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de lançamento inválido", http.StatusBadRequest)
		return
	}

	l, err := h.Service.Lancamentos.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Lançamento não encontrado", http.StatusNotFound)
		return
	}

	registro, err := h.Service.Liquidar(l)
	if err != nil {
		http.Error(w, fmt.Sprintf("Erro ao liquidar: %v", err), http.StatusUnprocessableEntity)
		return
	}
	if registro == nil {
		http.Error(w, "Lançamento não gera comissão", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registro)
}
