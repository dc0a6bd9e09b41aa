// internal/comissao/service.go
package comissao

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/NavalhaDigital/api-barbearia/internal/lancamento"
	"github.com/NavalhaDigital/api-barbearia/internal/notificacao"
	"github.com/NavalhaDigital/api-barbearia/internal/politicacomissao"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrRegistroNaoEncontrado indica ajuste ou cancelamento apontando para um
	// lançamento sem registro de comissão não-cancelado.
	ErrRegistroNaoEncontrado = errors.New("registro de comissão não encontrado")

	// ErrRegistroCancelado indica tentativa de ajuste em registro cancelado.
	ErrRegistroCancelado = errors.New("registro de comissão cancelado")

	// ErrTipoAjusteInvalido indica um tipo de ajuste fora de BONUS/DESCONTO/CORRECAO.
	ErrTipoAjusteInvalido = errors.New("tipo de ajuste inválido")
)

// Service é o motor de liquidação de comissões: consome lançamentos de
// receita confirmados, resolve a política, calcula e grava no máximo um
// registro por lançamento.
type Service struct {
	DB          *gorm.DB
	Politicas   *politicacomissao.Repository
	Registros   *Repository
	Lancamentos *lancamento.Repository
	Alertas     *notificacao.Cliente
	Log         *zap.Logger
}

func NewService(db *gorm.DB, alertas *notificacao.Cliente, log *zap.Logger) *Service {
	return &Service{
		DB:          db,
		Politicas:   politicacomissao.NewRepository(db),
		Registros:   NewRepository(db),
		Lancamentos: lancamento.NewRepository(db),
		Alertas:     alertas,
		Log:         log,
	}
}

// Liquidar processa um lançamento e grava a comissão correspondente.
//
// Retorna (nil, nil) para lançamentos que não geram comissão (tipo diferente
// de RECEITA ou ainda não confirmados) — situação normal, não é erro. Para um
// lançamento já liquidado, devolve o registro existente sem recalcular nada:
// é isso que garante no máximo uma comissão por lançamento mesmo quando o
// gatilho dispara duas vezes.
func (s *Service) Liquidar(l *lancamento.Lancamento) (*RegistroComissao, error) {
	if l.Tipo != lancamento.TipoReceita || !l.Confirmado {
		return nil, nil
	}

	existente, err := s.Registros.FindAtivoByLancamentoID(l.ID)
	if err == nil {
		return existente, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("consulta de idempotência falhou: %w", err)
	}

	politica, err := s.Politicas.Resolver(l.BarbeiroID, l.ServicoID)
	if err != nil {
		if errors.Is(err, politicacomissao.ErrPoliticaNaoEncontrada) {
			// Comissão não paga é problema de integridade financeira: vai
			// para a fila do operador, nunca é pulada em silêncio.
			s.Alertas.EnviarAlertaOperacional(
				"comissão não liquidada",
				fmt.Sprintf("barbeiro %d sem política de comissão (serviço %v)", l.BarbeiroID, l.ServicoID),
				l.ID,
			)
		}
		return nil, fmt.Errorf("liquidação do lançamento %d: %w", l.ID, err)
	}

	valorComissao := Calcular(l.Valor, politica)

	registro := RegistroComissao{
		LancamentoID:       l.ID,
		BarbeiroID:         l.BarbeiroID,
		PoliticaID:         politica.ID,
		ValorServico:       l.Valor,
		PercentualAplicado: politica.Percentual,
		ValorComissao:      valorComissao,
		Status:             StatusCalculada,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Recheca dentro da transação; o índice único parcial em Migrate é
		// quem garante o invariante quando duas liquidações correm juntas.
		var corrida RegistroComissao
		err := tx.Where("lancamento_id = ? AND status <> ?", l.ID, StatusCancelada).
			First(&corrida).Error
		if err == nil {
			registro = corrida
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&registro).Error; err != nil {
			return err
		}

		// Lançamento de COMISSAO como trilha de auditoria da derivação.
		auditoria := lancamento.Lancamento{
			Tipo:       lancamento.TipoComissao,
			BarbeiroID: l.BarbeiroID,
			ServicoID:  l.ServicoID,
			Valor:      valorComissao,
			Descricao: fmt.Sprintf("Comissão do lançamento %d (%.2f%% de R$ %.2f)",
				l.ID, politica.Percentual, l.Valor),
			DataOcorrencia: time.Now(),
			Confirmado:     true,
			OrigemID:       &l.ID,
		}
		return lancamento.NewRepository(tx).Create(&auditoria)
	})
	if err != nil {
		// Liquidação concorrente venceu a corrida no índice único: converge
		// para o registro que ela gravou.
		if vencedor, errBusca := s.Registros.FindAtivoByLancamentoID(l.ID); errBusca == nil {
			return vencedor, nil
		}
		return nil, fmt.Errorf("gravação da comissão do lançamento %d: %w", l.ID, err)
	}

	// LIQUIDADA só depois do commit da escrita.
	if registro.Status == StatusCalculada {
		if err := s.Registros.UpdateStatus(registro.ID, StatusLiquidada); err != nil {
			return nil, fmt.Errorf("marcação de liquidação do registro %d: %w", registro.ID, err)
		}
		registro.Status = StatusLiquidada
	}

	s.Log.Info("comissão liquidada",
		zap.Uint("lancamentoId", l.ID),
		zap.Uint("registroId", registro.ID),
		zap.Float64("valor", registro.ValorComissao),
	)
	return &registro, nil
}

// LiquidarLancamento implementa lancamento.Liquidador.
func (s *Service) LiquidarLancamento(l *lancamento.Lancamento) error {
	_, err := s.Liquidar(l)
	return err
}

// ConfirmarELiquidar é o caminho de confirmação de receita usado pelo webhook
// de pagamento: confirma o lançamento (idempotente) e liquida a comissão.
func (s *Service) ConfirmarELiquidar(lancamentoID uint) (*RegistroComissao, error) {
	l, err := s.Lancamentos.Confirmar(lancamentoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistroNaoEncontrado
		}
		return nil, err
	}
	return s.Liquidar(l)
}

// AplicarAjuste aplica uma correção manual ao registro de um lançamento.
//
// BONUS soma |delta|; DESCONTO subtrai |delta| com piso em zero; CORRECAO
// substitui o valor por |delta|. O ajuste é append-only e carrega o valor
// antes/depois para replay de auditoria.
func (s *Service) AplicarAjuste(lancamentoID uint, tipo string, delta float64, motivo, aprovadoPor string) (*Ajuste, error) {
	registro, err := s.Registros.FindAtivoByLancamentoID(lancamentoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, errCancelado := s.Registros.FindByLancamentoID(lancamentoID); errCancelado == nil {
				return nil, ErrRegistroCancelado
			}
			return nil, ErrRegistroNaoEncontrado
		}
		return nil, err
	}

	antes := registro.ValorComissao
	abs := math.Abs(delta)

	var depois float64
	switch tipo {
	case AjusteBonus:
		depois = antes + abs
	case AjusteDesconto:
		depois = antes - abs
		if depois < 0 {
			depois = 0
		}
	case AjusteCorrecao:
		depois = abs
	default:
		return nil, ErrTipoAjusteInvalido
	}
	depois = Arredondar2(depois)

	ajuste := Ajuste{
		RegistroComissaoID: registro.ID,
		Tipo:               tipo,
		Delta:              delta,
		Motivo:             motivo,
		AprovadoPor:        aprovadoPor,
		ValorAntes:         antes,
		ValorDepois:        depois,
		AplicadoEm:         time.Now(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.Registros.WithDB(tx)
		if err := repo.CreateAjuste(&ajuste); err != nil {
			return err
		}
		return repo.UpdateValor(registro.ID, depois)
	})
	if err != nil {
		return nil, fmt.Errorf("ajuste do registro %d: %w", registro.ID, err)
	}

	s.Log.Info("ajuste aplicado",
		zap.Uint("registroId", registro.ID),
		zap.String("tipo", tipo),
		zap.Float64("antes", antes),
		zap.Float64("depois", depois),
	)
	return &ajuste, nil
}

// CancelarPorLancamento marca como CANCELADA a comissão de um lançamento
// (estorno/chargeback do pagamento). O histórico — inclusive ajustes — é
// preservado; nada é deletado. Cancelar um lançamento sem registro ativo é
// um no-op e retorna ErrRegistroNaoEncontrado para o chamador decidir.
func (s *Service) CancelarPorLancamento(lancamentoID uint) error {
	registro, err := s.Registros.FindAtivoByLancamentoID(lancamentoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistroNaoEncontrado
		}
		return err
	}

	if err := s.Registros.UpdateStatus(registro.ID, StatusCancelada); err != nil {
		return fmt.Errorf("cancelamento do registro %d: %w", registro.ID, err)
	}

	s.Log.Info("comissão cancelada",
		zap.Uint("lancamentoId", lancamentoID),
		zap.Uint("registroId", registro.ID),
	)
	return nil
}
