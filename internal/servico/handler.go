package servico

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Handler gerencia rotas do catálogo de serviços.
type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// POST /servicos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var s Servico
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if s.Valor < 0 {
		http.Error(w, "Valor do serviço não pode ser negativo", http.StatusBadRequest)
		return
	}
	if err := h.Repo.Create(&s); err != nil {
		http.Error(w, "Erro ao criar serviço", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(s)
}

// GET /servicos?ativos=true
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	var (
		servicos []Servico
		err      error
	)
	if r.URL.Query().Get("ativos") == "true" {
		servicos, err = h.Repo.ListAtivos()
	} else {
		servicos, err = h.Repo.ListAll()
	}
	if err != nil {
		http.Error(w, "Erro ao buscar serviços", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(servicos)
}

// GET /servicos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	s, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Serviço não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// PUT /servicos/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	s, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Serviço não encontrado", http.StatusNotFound)
		return
	}

	var payload Servico
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	s.Nome = payload.Nome
	s.Descricao = payload.Descricao
	s.Valor = payload.Valor
	s.DuracaoMinutos = payload.DuracaoMinutos
	s.Ativo = payload.Ativo

	if err := h.Repo.Update(s); err != nil {
		http.Error(w, "Erro ao atualizar serviço", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// DELETE /servicos/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	s, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Serviço não encontrado", http.StatusNotFound)
		return
	}
	if err := h.Repo.Delete(s); err != nil {
		http.Error(w, "Erro ao deletar serviço", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
