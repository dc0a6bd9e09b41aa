package notificacao

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Cliente envia alertas operacionais para o webhook do painel (Slack, Discord
// ou automação interna). Falhas de liquidação nunca podem sumir em silêncio:
// quando o POST falha, o alerta ao menos fica no log estruturado.
type Cliente struct {
	URL  string
	HTTP *http.Client
	Log  *zap.Logger
}

func NewCliente(log *zap.Logger) *Cliente {
	return &Cliente{
		URL:  os.Getenv("ALERTA_WEBHOOK_URL"),
		HTTP: &http.Client{Timeout: 10 * time.Second},
		Log:  log,
	}
}

// EnviarAlertaOperacional publica um alerta para a fila do operador.
func (c *Cliente) EnviarAlertaOperacional(assunto, detalhe string, lancamentoID uint) {
	c.Log.Warn("alerta operacional",
		zap.String("assunto", assunto),
		zap.String("detalhe", detalhe),
		zap.Uint("lancamentoId", lancamentoID),
	)

	if c.URL == "" {
		return
	}

	payload := map[string]interface{}{
		"assunto":      assunto,
		"detalhe":      detalhe,
		"lancamentoId": lancamentoID,
	}
	body, _ := json.Marshal(payload)

	resp, err := c.HTTP.Post(c.URL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		c.Log.Error("erro ao enviar webhook de alerta", zap.Error(err))
		return
	}
	defer resp.Body.Close()
}
