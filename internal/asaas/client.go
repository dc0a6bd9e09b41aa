// internal/asaas/client.go
package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config reúne endpoint, credenciais e o orçamento de retry do cliente.
type Config struct {
	BaseURL     string
	AccessToken string
	ClienteID   string

	Timeout       time.Duration // por tentativa
	MaxTentativas int
	DelayInicial  time.Duration
	DelayMaximo   time.Duration
}

// ConfigFromEnv monta a configuração a partir do ambiente, com os defaults
// do contrato: 3 tentativas, 1s inicial, dobro a cada tentativa, teto de 10s.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:       os.Getenv("ASAAS_BASE_URL"),
		AccessToken:   os.Getenv("ASAAS_ACCESS_TOKEN"),
		ClienteID:     os.Getenv("ASAAS_CLIENT_ID"),
		Timeout:       30 * time.Second,
		MaxTentativas: 3,
		DelayInicial:  1000 * time.Millisecond,
		DelayMaximo:   10000 * time.Millisecond,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://sandbox.asaas.com/api/v3"
	}
	if cfg.ClienteID == "" {
		cfg.ClienteID = "api-barbearia"
	}
	if v, err := strconv.Atoi(os.Getenv("ASAAS_MAX_TENTATIVAS")); err == nil && v > 0 {
		cfg.MaxTentativas = v
	}
	if v, err := strconv.Atoi(os.Getenv("ASAAS_TIMEOUT_SEGUNDOS")); err == nil && v > 0 {
		cfg.Timeout = time.Duration(v) * time.Second
	}
	if v, err := strconv.Atoi(os.Getenv("ASAAS_DELAY_INICIAL_MS")); err == nil && v > 0 {
		cfg.DelayInicial = time.Duration(v) * time.Millisecond
	}
	if v, err := strconv.Atoi(os.Getenv("ASAAS_DELAY_MAXIMO_MS")); err == nil && v > 0 {
		cfg.DelayMaximo = time.Duration(v) * time.Millisecond
	}
	return cfg
}

// Client é o wrapper HTTP do gateway de pagamento. Não guarda estado local:
// toda mutação de espelho acontece no processador de webhook ou no chamador.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// delayPara devolve o atraso da tentativa: inicial * 2^(tentativa-1), com teto.
func (c *Client) delayPara(tentativa int) time.Duration {
	d := c.cfg.DelayInicial
	for i := 1; i < tentativa; i++ {
		d *= 2
		if d >= c.cfg.DelayMaximo {
			return c.cfg.DelayMaximo
		}
	}
	if d > c.cfg.DelayMaximo {
		d = c.cfg.DelayMaximo
	}
	return d
}

func classificarStatus(status int) (tipo string, retentavel bool) {
	switch {
	case status == http.StatusBadRequest:
		return TipoValidacao, false
	case status == http.StatusUnauthorized:
		return TipoAutenticacao, false
	case status == http.StatusTooManyRequests:
		return TipoRateLimit, true
	case status >= 500:
		return TipoServidor, true
	default:
		return TipoRejeicao, false
	}
}

// request executa a chamada com retry: só falhas de transporte, timeout, 5xx
// e 429 voltam para o cronograma de backoff; os demais 4xx propagam na hora.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serialização do corpo: %w", err)
		}
	}

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var ultimo *Erro
	for tentativa := 1; tentativa <= c.cfg.MaxTentativas; tentativa++ {
		if tentativa > 1 {
			delay := c.delayPara(tentativa - 1)
			c.log.Debug("aguardando retry do gateway",
				zap.Int("tentativa", tentativa),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return &Erro{Tipo: TipoTimeout, Mensagem: ctx.Err().Error(), Tentativas: tentativa - 1}
			case <-time.After(delay):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return fmt.Errorf("montagem da requisição: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("access_token", c.cfg.AccessToken)
		req.Header.Set("User-Agent", c.cfg.ClienteID)

		resp, err := c.http.Do(req)
		if err != nil {
			tipo := TipoTransporte
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				tipo = TipoTimeout
			}
			ultimo = &Erro{Tipo: tipo, Mensagem: err.Error(), Tentativas: tentativa}
			c.log.Warn("falha de transporte no gateway",
				zap.String("tipo", tipo), zap.Int("tentativa", tentativa), zap.Error(err))
			continue
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			ultimo = &Erro{Tipo: TipoTransporte, Mensagem: err.Error(), Tentativas: tentativa}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out != nil && len(raw) > 0 {
				if err := json.Unmarshal(raw, out); err != nil {
					return fmt.Errorf("decodificação da resposta: %w", err)
				}
			}
			return nil
		}

		tipo, retentavel := classificarStatus(resp.StatusCode)
		e := &Erro{
			Tipo:       tipo,
			StatusHTTP: resp.StatusCode,
			Mensagem:   http.StatusText(resp.StatusCode),
			Tentativas: tentativa,
		}
		var corpoErro erroAPI
		if json.Unmarshal(raw, &corpoErro) == nil {
			for _, item := range corpoErro.Errors {
				e.Detalhes = append(e.Detalhes, fmt.Sprintf("%s: %s", item.Code, item.Description))
			}
			if len(e.Detalhes) > 0 {
				e.Mensagem = e.Detalhes[0]
			}
		}

		if !retentavel {
			return e
		}
		ultimo = e
		c.log.Warn("resposta retentável do gateway",
			zap.Int("status", resp.StatusCode), zap.Int("tentativa", tentativa))
	}

	if ultimo == nil {
		ultimo = &Erro{Tipo: TipoTransporte, Mensagem: "orçamento de tentativas esgotado"}
	}
	return ultimo
}

// CriarCobranca cria uma cobrança no gateway.
func (c *Client) CriarCobranca(ctx context.Context, req *CriarCobrancaRequest) (*Cobranca, error) {
	var cob Cobranca
	if err := c.request(ctx, http.MethodPost, "/payments", nil, req, &cob); err != nil {
		return nil, err
	}
	return &cob, nil
}

// BuscarCobranca busca uma cobrança pelo id do gateway.
func (c *Client) BuscarCobranca(ctx context.Context, id string) (*Cobranca, error) {
	var cob Cobranca
	if err := c.request(ctx, http.MethodGet, "/payments/"+id, nil, nil, &cob); err != nil {
		return nil, err
	}
	return &cob, nil
}

// ListarCobrancas lista cobranças com filtros e paginação.
func (c *Client) ListarCobrancas(ctx context.Context, filtro FiltroCobrancas) (*ListaCobrancas, error) {
	q := url.Values{}
	if filtro.Customer != "" {
		q.Set("customer", filtro.Customer)
	}
	if filtro.Status != "" {
		q.Set("status", filtro.Status)
	}
	if filtro.ExternalReference != "" {
		q.Set("externalReference", filtro.ExternalReference)
	}
	if filtro.Offset > 0 {
		q.Set("offset", strconv.Itoa(filtro.Offset))
	}
	if filtro.Limit > 0 {
		q.Set("limit", strconv.Itoa(filtro.Limit))
	}

	var lista ListaCobrancas
	if err := c.request(ctx, http.MethodGet, "/payments", q, nil, &lista); err != nil {
		return nil, err
	}
	return &lista, nil
}

// ObterPixQRCode devolve o QR Code PIX de uma cobrança.
func (c *Client) ObterPixQRCode(ctx context.Context, id string) (*PixQRCode, error) {
	var qr PixQRCode
	if err := c.request(ctx, http.MethodGet, "/payments/"+id+"/pixQrCode", nil, nil, &qr); err != nil {
		return nil, err
	}
	return &qr, nil
}

// ConfirmarRecebimentoEmDinheiro marca a cobrança como recebida em espécie.
func (c *Client) ConfirmarRecebimentoEmDinheiro(ctx context.Context, id string, req *RecebimentoEmDinheiroRequest) (*Cobranca, error) {
	var cob Cobranca
	if err := c.request(ctx, http.MethodPost, "/payments/"+id+"/receiveInCash", nil, req, &cob); err != nil {
		return nil, err
	}
	return &cob, nil
}
