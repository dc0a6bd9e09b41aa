package barbeiro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NavalhaDigital/api-barbearia/internal/auth"
	"github.com/NavalhaDigital/api-barbearia/internal/utils"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupHandler(t *testing.T) *Handler {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewHandler(db)
}

func comAutenticacao(r *http.Request, userID uint, isAdmin bool) *http.Request {
	ctx := context.WithValue(r.Context(), auth.CtxUserID, userID)
	ctx = context.WithValue(ctx, auth.CtxIsAdmin, isAdmin)
	return r.WithContext(ctx)
}

func TestCriarBarbeiro_SemSenhaGeraTemporaria(t *testing.T) {
	h := setupHandler(t)

	body := bytes.NewBufferString(`{"nome":"João","cpf":"11122233344","email":"joao@exemplo.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/barbeiros", body)
	rec := httptest.NewRecorder()
	h.CriarBarbeiro(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Barbeiro        Barbeiro `json:"barbeiro"`
		SenhaTemporaria string   `json:"senhaTemporaria"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.SenhaTemporaria, 12)

	// A senha temporária devolvida é a que autentica, e o flag de
	// redefinição fica armado.
	salvo, err := h.Repository.BuscarPorID(h.DB, resp.Barbeiro.ID)
	require.NoError(t, err)
	assert.True(t, salvo.PrecisaRedefinirSenha)
	assert.True(t, utils.VerificarSenha(salvo.Senha, resp.SenhaTemporaria))
}

func TestLogin_SinalizaRedefinicaoPendente(t *testing.T) {
	h := setupHandler(t)

	hash, err := utils.HashSenha("senha-temp")
	require.NoError(t, err)
	b := Barbeiro{Nome: "João", CPF: "11122233344", Email: "joao@exemplo.com",
		Senha: hash, Ativo: true, PrecisaRedefinirSenha: true}
	require.NoError(t, h.Repository.Salvar(h.DB, &b))

	body := bytes.NewBufferString(`{"login":"joao@exemplo.com","password":"senha-temp"}`)
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/login", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token                 string `json:"token"`
		PrecisaRedefinirSenha bool   `json:"precisaRedefinirSenha"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.PrecisaRedefinirSenha)
}

func TestRedefinirSenha_LimpaFlagETrocaSenha(t *testing.T) {
	h := setupHandler(t)

	hash, err := utils.HashSenha("senha-temp")
	require.NoError(t, err)
	b := Barbeiro{Nome: "João", CPF: "11122233344", Email: "joao@exemplo.com",
		Senha: hash, Ativo: true, PrecisaRedefinirSenha: true}
	require.NoError(t, h.Repository.Salvar(h.DB, &b))

	body := bytes.NewBufferString(`{"senhaAtual":"senha-temp","novaSenha":"definitiva"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/barbeiros/%d/senha", b.ID), body)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(b.ID)})
	req = comAutenticacao(req, b.ID, false)
	rec := httptest.NewRecorder()
	h.RedefinirSenha(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	salvo, err := h.Repository.BuscarPorID(h.DB, b.ID)
	require.NoError(t, err)
	assert.False(t, salvo.PrecisaRedefinirSenha)
	assert.False(t, utils.VerificarSenha(salvo.Senha, "senha-temp"))
	assert.True(t, utils.VerificarSenha(salvo.Senha, "definitiva"))
}

func TestRedefinirSenha_SenhaAtualIncorreta(t *testing.T) {
	h := setupHandler(t)

	hash, err := utils.HashSenha("certa")
	require.NoError(t, err)
	b := Barbeiro{Nome: "João", CPF: "11122233344", Email: "joao@exemplo.com",
		Senha: hash, Ativo: true}
	require.NoError(t, h.Repository.Salvar(h.DB, &b))

	body := bytes.NewBufferString(`{"senhaAtual":"errada","novaSenha":"nova"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/barbeiros/%d/senha", b.ID), body)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(b.ID)})
	req = comAutenticacao(req, b.ID, false)
	rec := httptest.NewRecorder()
	h.RedefinirSenha(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedefinirSenha_OutroUsuarioSemAdmin(t *testing.T) {
	h := setupHandler(t)

	hash, err := utils.HashSenha("qualquer")
	require.NoError(t, err)
	b := Barbeiro{Nome: "João", CPF: "11122233344", Email: "joao@exemplo.com",
		Senha: hash, Ativo: true}
	require.NoError(t, h.Repository.Salvar(h.DB, &b))

	body := bytes.NewBufferString(`{"senhaAtual":"qualquer","novaSenha":"nova"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/barbeiros/%d/senha", b.ID), body)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(b.ID)})
	req = comAutenticacao(req, b.ID+1, false)
	rec := httptest.NewRecorder()
	h.RedefinirSenha(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRedefinirSenha_AdminNaoPrecisaDaSenhaAtual(t *testing.T) {
	h := setupHandler(t)

	hash, err := utils.HashSenha("esquecida")
	require.NoError(t, err)
	b := Barbeiro{Nome: "João", CPF: "11122233344", Email: "joao@exemplo.com",
		Senha: hash, Ativo: true}
	require.NoError(t, h.Repository.Salvar(h.DB, &b))

	body := bytes.NewBufferString(`{"novaSenha":"resetada"}`)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/barbeiros/%d/senha", b.ID), body)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(b.ID)})
	req = comAutenticacao(req, b.ID+1, true)
	rec := httptest.NewRecorder()
	h.RedefinirSenha(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	salvo, err := h.Repository.BuscarPorID(h.DB, b.ID)
	require.NoError(t, err)
	assert.True(t, utils.VerificarSenha(salvo.Senha, "resetada"))
}
