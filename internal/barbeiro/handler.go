package barbeiro

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/NavalhaDigital/api-barbearia/internal/auth"
	"github.com/NavalhaDigital/api-barbearia/internal/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// request DTOs
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type createBarbeiroRequest struct {
	Nome      string `json:"nome"`
	Sobrenome string `json:"sobrenome"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Telefone  string `json:"telefone"`
	Foto      string `json:"foto"`
	Senha     string `json:"senha"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Handler encapsula DB e repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

// Login gera um JWT para credenciais válidas
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	user, err := h.Repository.BuscarPorEmailOuCPF(h.DB, req.Login)
	if err != nil {
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}

	if !utils.VerificarSenha(user.Senha, req.Password) {
		http.Error(w, "senha incorreta", http.StatusUnauthorized)
		return
	}

	token, err := auth.GerarToken(user.ID, user.IsAdmin)
	if err != nil {
		http.Error(w, "erro ao gerar token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":                 token,
		"precisaRedefinirSenha": user.PrecisaRedefinirSenha,
	})
}

// CriarBarbeiro cadastra novo barbeiro (rota administrativa)
// Sem senha no payload, uma senha temporária é gerada e devolvida uma única
// vez na resposta; o primeiro login exige redefinição.
func (h *Handler) CriarBarbeiro(w http.ResponseWriter, r *http.Request) {
	var req createBarbeiroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	senha := req.Senha
	temporaria := ""
	if senha == "" {
		gerada, err := utils.GerarSenhaTemporaria()
		if err != nil {
			http.Error(w, "erro ao gerar senha temporária", http.StatusInternalServerError)
			return
		}
		senha = gerada
		temporaria = gerada
	}

	hash, err := utils.HashSenha(senha)
	if err != nil {
		http.Error(w, "erro ao gerar hash de senha", http.StatusInternalServerError)
		return
	}

	b := Barbeiro{
		Nome:                  req.Nome,
		Sobrenome:             req.Sobrenome,
		CPF:                   req.CPF,
		Email:                 req.Email,
		Telefone:              req.Telefone,
		Foto:                  req.Foto,
		Senha:                 hash,
		IsAdmin:               req.IsAdmin,
		Ativo:                 true,
		PrecisaRedefinirSenha: temporaria != "",
	}

	if err := h.Repository.Salvar(h.DB, &b); err != nil {
		http.Error(w, "erro ao criar barbeiro", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if temporaria != "" {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"barbeiro":        b,
			"senhaTemporaria": temporaria,
		})
		return
	}
	json.NewEncoder(w).Encode(b)
}

// RedefinirSenha troca a senha do próprio barbeiro (ou de qualquer um, se
// admin) e limpa a exigência de redefinição da senha temporária.
func (h *Handler) RedefinirSenha(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	isAdmin, _ := r.Context().Value(auth.CtxIsAdmin).(bool)
	if uint(id) != userID && !isAdmin {
		http.Error(w, "sem permissão para alterar esta senha", http.StatusForbidden)
		return
	}

	var req struct {
		SenhaAtual string `json:"senhaAtual"`
		NovaSenha  string `json:"novaSenha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NovaSenha == "" {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	b, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "barbeiro não encontrado", http.StatusNotFound)
		return
	}

	// Admin redefinindo a senha de outro barbeiro não precisa da senha atual.
	if uint(id) == userID && !utils.VerificarSenha(b.Senha, req.SenhaAtual) {
		http.Error(w, "senha atual incorreta", http.StatusUnauthorized)
		return
	}

	hash, err := utils.HashSenha(req.NovaSenha)
	if err != nil {
		http.Error(w, "erro ao gerar hash de senha", http.StatusInternalServerError)
		return
	}
	b.Senha = hash
	b.PrecisaRedefinirSenha = false

	if err := h.Repository.Salvar(h.DB, b); err != nil {
		http.Error(w, "erro ao atualizar senha", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListarBarbeiros retorna todos os barbeiros cadastrados
func (h *Handler) ListarBarbeiros(w http.ResponseWriter, r *http.Request) {
	barbeiros, err := h.Repository.ListarTodos(h.DB)
	if err != nil {
		http.Error(w, "erro ao listar barbeiros", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(barbeiros)
}

// BuscarPorID retorna um barbeiro pelo ID
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	b, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "barbeiro não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

// AtualizarBarbeiro atualiza dados cadastrais (não altera senha)
func (h *Handler) AtualizarBarbeiro(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	b, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "barbeiro não encontrado", http.StatusNotFound)
		return
	}

	var payload createBarbeiroRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	b.Nome = payload.Nome
	b.Sobrenome = payload.Sobrenome
	b.CPF = payload.CPF
	b.Email = payload.Email
	b.Telefone = payload.Telefone
	b.Foto = payload.Foto

	if err := h.Repository.Salvar(h.DB, b); err != nil {
		http.Error(w, "erro ao atualizar barbeiro", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

// DeletarBarbeiro remove (soft delete) um barbeiro
func (h *Handler) DeletarBarbeiro(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "erro ao deletar barbeiro", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
