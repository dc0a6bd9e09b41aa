package pagamento

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler expõe o endpoint de webhook do gateway e consultas do espelho.
type Handler struct {
	Processor *Processor
}

func NewHandler(processor *Processor) *Handler {
	return &Handler{Processor: processor}
}

// ReceberWebhook trata POST /webhooks/asaas
// Um evento com falha responde 5xx para o gateway reentregar; o erro fica
// registrado no log de eventos para reprocesso manual.
func (h *Handler) ReceberWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "corpo ilegível", http.StatusBadRequest)
		return
	}

	var dto WebhookDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	assinatura := r.Header.Get("asaas-access-token")
	resultado, err := h.Processor.Processar(&dto, assinatura, raw)
	if err != nil {
		var invalido *ErroPayloadInvalido
		switch {
		case errors.As(err, &invalido):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{"erros": invalido.Problemas})
		case errors.Is(err, ErrAssinaturaInvalida):
			http.Error(w, "assinatura inválida", http.StatusUnauthorized)
		default:
			h.Processor.Log.Error("falha ao processar webhook", zap.Error(err))
			http.Error(w, "erro ao processar evento", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resultado)
}

// BuscarEspelho trata GET /pagamentos/{gatewayId}
func (h *Handler) BuscarEspelho(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["gatewayId"]
	p, err := h.Processor.Repo.FindByGatewayID(id)
	if err != nil {
		http.Error(w, "pagamento não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// ListarPorLancamento trata GET /lancamentos/{id}/pagamentos
func (h *Handler) ListarPorLancamento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de lançamento inválido", http.StatusBadRequest)
		return
	}
	pagamentos, err := h.Processor.Repo.ListByLancamentoID(uint(id))
	if err != nil {
		http.Error(w, "erro ao buscar pagamentos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pagamentos)
}

// ListarEventosComErro trata GET /webhooks/eventos-com-erro (fila do operador)
func (h *Handler) ListarEventosComErro(w http.ResponseWriter, r *http.Request) {
	eventos, err := h.Processor.Repo.ListEventosComErro()
	if err != nil {
		http.Error(w, "erro ao buscar eventos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eventos)
}
