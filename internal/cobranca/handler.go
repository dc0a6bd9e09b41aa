package cobranca

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/NavalhaDigital/api-barbearia/internal/asaas"
	"github.com/gorilla/mux"
)

// Handler expõe a orquestração de cobranças do gateway.
type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// responderErroGateway traduz a taxonomia de erro do cliente Asaas em HTTP.
func responderErroGateway(w http.ResponseWriter, err error) {
	var e *asaas.Erro
	if !errors.As(err, &e) {
		http.Error(w, "erro ao falar com o gateway", http.StatusInternalServerError)
		return
	}
	switch e.Tipo {
	case asaas.TipoValidacao:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"erros": e.Detalhes, "mensagem": e.Mensagem})
	case asaas.TipoAutenticacao:
		http.Error(w, "credenciais do gateway rejeitadas", http.StatusBadGateway)
	case asaas.TipoTimeout, asaas.TipoTransporte, asaas.TipoServidor, asaas.TipoRateLimit:
		http.Error(w, "gateway indisponível, tente novamente", http.StatusServiceUnavailable)
	default:
		http.Error(w, e.Mensagem, http.StatusBadGateway)
	}
}

// Criar trata POST /lancamentos/{id}/cobranca
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de lançamento inválido", http.StatusBadRequest)
		return
	}

	var dto CriarCobrancaDTO
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

	cob, err := h.Service.CriarParaLancamento(r.Context(), uint(id), &dto)
	if err != nil {
		if errors.Is(err, ErrLancamentoNaoEncontrado) {
			http.Error(w, "Lançamento não encontrado", http.StatusNotFound)
			return
		}
		responderErroGateway(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cob)
}

// Buscar trata GET /cobrancas/{gatewayId}
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	cob, err := h.Service.Gateway.BuscarCobranca(r.Context(), mux.Vars(r)["gatewayId"])
	if err != nil {
		responderErroGateway(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cob)
}

// Listar trata GET /cobrancas com filtros de consulta do gateway.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtro := asaas.FiltroCobrancas{
		Customer:          q.Get("customer"),
		Status:            q.Get("status"),
		ExternalReference: q.Get("externalReference"),
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filtro.Offset = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filtro.Limit = v
	}

	lista, err := h.Service.Gateway.ListarCobrancas(r.Context(), filtro)
	if err != nil {
		responderErroGateway(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lista)
}

// QRCode trata GET /cobrancas/{gatewayId}/qrcode
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.Service.Gateway.ObterPixQRCode(r.Context(), mux.Vars(r)["gatewayId"])
	if err != nil {
		responderErroGateway(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(qr)
}

// ReceberEmDinheiro trata POST /cobrancas/{gatewayId}/receber-em-dinheiro
func (h *Handler) ReceberEmDinheiro(w http.ResponseWriter, r *http.Request) {
	espelho, err := h.Service.ReceberEmDinheiro(r.Context(), mux.Vars(r)["gatewayId"])
	if err != nil {
		responderErroGateway(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(espelho)
}
