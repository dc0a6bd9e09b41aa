// internal/asaas/erros.go
package asaas

import "fmt"

// Classes de erro do gateway. Transporte, timeout, rate-limit e servidor são
// retentáveis; validação, autenticação e rejeição propagam imediatamente.
const (
	TipoValidacao    = "VALIDACAO"    // 400
	TipoAutenticacao = "AUTENTICACAO" // 401
	TipoRateLimit    = "RATE_LIMIT"   // 429
	TipoRejeicao     = "REJEICAO"     // demais 4xx
	TipoServidor     = "SERVIDOR"     // 5xx
	TipoTransporte   = "TRANSPORTE"   // falha de rede
	TipoTimeout      = "TIMEOUT"      // estouro do timeout por tentativa
)

// Erro é o erro classificado de uma chamada ao gateway.
type Erro struct {
	Tipo       string
	StatusHTTP int
	Mensagem   string
	Detalhes   []string
	Tentativas int
}

func (e *Erro) Error() string {
	if e.StatusHTTP > 0 {
		return fmt.Sprintf("asaas: %s (HTTP %d) após %d tentativa(s): %s",
			e.Tipo, e.StatusHTTP, e.Tentativas, e.Mensagem)
	}
	return fmt.Sprintf("asaas: %s após %d tentativa(s): %s", e.Tipo, e.Tentativas, e.Mensagem)
}

// Retentavel diz se a classe de erro entra no cronograma de backoff.
func (e *Erro) Retentavel() bool {
	switch e.Tipo {
	case TipoTransporte, TipoTimeout, TipoServidor, TipoRateLimit:
		return true
	}
	return false
}
