package politicacomissao

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler gerencia as rotas administrativas de política de comissão.
type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// Upsert trata PUT /politicas-comissao
// Cria ou substitui a política ativa do par (barbeiro, serviço).
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var dto UpsertPoliticaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	if problemas := dto.Validar(); len(problemas) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"erros": problemas})
		return
	}

	politica := PoliticaComissao{
		BarbeiroID:  dto.BarbeiroID,
		ServicoID:   dto.ServicoID,
		Percentual:  dto.Percentual,
		ValorMinimo: dto.ValorMinimo,
		ValorMaximo: dto.ValorMaximo,
	}
	if err := h.Repo.Upsert(&politica); err != nil {
		http.Error(w, "Erro ao salvar política", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(politica)
}

// ListarPorBarbeiro trata GET /barbeiros/{id}/politicas-comissao
func (h *Handler) ListarPorBarbeiro(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de barbeiro inválido", http.StatusBadRequest)
		return
	}
	politicas, err := h.Repo.ListByBarbeiroID(uint(id))
	if err != nil {
		http.Error(w, "Erro ao buscar políticas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(politicas)
}

// Resolver trata GET /barbeiros/{id}/politicas-comissao/resolver?servicoId=N
// Exposto para o painel administrativo conferir qual política seria aplicada.
func (h *Handler) Resolver(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de barbeiro inválido", http.StatusBadRequest)
		return
	}

	var servicoID *uint
	if raw := r.URL.Query().Get("servicoId"); raw != "" {
		sid, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "servicoId inválido", http.StatusBadRequest)
			return
		}
		v := uint(sid)
		servicoID = &v
	}

	politica, err := h.Repo.Resolver(uint(id), servicoID)
	if err != nil {
		if errors.Is(err, ErrPoliticaNaoEncontrada) {
			http.Error(w, "Política de comissão não encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao resolver política", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(politica)
}

// Desativar trata DELETE /politicas-comissao/{id}
func (h *Handler) Desativar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Repo.Desativar(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Política não encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao desativar política", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
