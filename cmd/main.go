package main

import (
	"log"
	"net/http"
	"os"

	"github.com/NavalhaDigital/api-barbearia/internal/asaas"
	"github.com/NavalhaDigital/api-barbearia/internal/auth"
	"github.com/NavalhaDigital/api-barbearia/internal/barbeiro"
	"github.com/NavalhaDigital/api-barbearia/internal/cobranca"
	"github.com/NavalhaDigital/api-barbearia/internal/comissao"
	"github.com/NavalhaDigital/api-barbearia/internal/lancamento"
	"github.com/NavalhaDigital/api-barbearia/internal/notificacao"
	"github.com/NavalhaDigital/api-barbearia/internal/pagamento"
	"github.com/NavalhaDigital/api-barbearia/internal/politicacomissao"
	"github.com/NavalhaDigital/api-barbearia/internal/servico"
	"github.com/NavalhaDigital/api-barbearia/internal/utils/db"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if os.Getenv("APP_ENV") != "production" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Erro ao iniciar logger:", err)
	}
	defer logger.Sync()

	database, err := db.GetDB()
	if err != nil {
		log.Fatal("Erro ao conectar no banco:", err)
	}

	// AutoMigrate de todos os modelos
	if err := barbeiro.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := servico.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := politicacomissao.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := lancamento.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := comissao.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := pagamento.Migrate(database); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}

	// Serviços
	alertas := notificacao.NewCliente(logger)
	comissaoService := comissao.NewService(database, alertas, logger)
	gateway := asaas.NewClient(asaas.ConfigFromEnv(), logger)
	webhookProcessor := pagamento.NewProcessor(database, comissaoService, logger)
	cobrancaService := cobranca.NewService(database, gateway, comissaoService, logger)

	// Handlers
	barbeiroHandler := barbeiro.NewHandler(database)
	servicoHandler := servico.NewHandler(servico.NewRepository(database))
	politicaHandler := politicacomissao.NewHandler(politicacomissao.NewRepository(database))
	lancamentoHandler := lancamento.NewHandler(lancamento.NewRepository(database), comissaoService, logger)
	comissaoHandler := comissao.NewHandler(comissaoService)
	pagamentoHandler := pagamento.NewHandler(webhookProcessor)
	cobrancaHandler := cobranca.NewHandler(cobrancaService)

	// Router
	r := mux.NewRouter()

	// Rotas públicas
	r.HandleFunc("/login", barbeiroHandler.Login).Methods("POST")
	r.HandleFunc("/webhooks/asaas", pagamentoHandler.ReceberWebhook).Methods("POST")

	// Rotas autenticadas
	api := r.NewRoute().Subrouter()
	api.Use(auth.MiddlewareAutenticacao)

	// Barbeiros
	api.HandleFunc("/barbeiros", barbeiroHandler.ListarBarbeiros).Methods("GET")
	api.HandleFunc("/barbeiros/{id}", barbeiroHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/barbeiros/{id}", barbeiroHandler.AtualizarBarbeiro).Methods("PUT")
	api.HandleFunc("/barbeiros/{id}/senha", barbeiroHandler.RedefinirSenha).Methods("PUT")
	api.HandleFunc("/barbeiros/{id}/lancamentos", lancamentoHandler.ListarPorBarbeiro).Methods("GET")
	api.HandleFunc("/barbeiros/{id}/comissoes", comissaoHandler.ListarPorBarbeiro).Methods("GET")
	api.HandleFunc("/barbeiros/{id}/politicas-comissao", politicaHandler.ListarPorBarbeiro).Methods("GET")
	api.HandleFunc("/barbeiros/{id}/politicas-comissao/resolver", politicaHandler.Resolver).Methods("GET")

	// Serviços
	api.HandleFunc("/servicos", servicoHandler.Listar).Methods("GET")
	api.HandleFunc("/servicos/{id}", servicoHandler.BuscarPorID).Methods("GET")

	// Lançamentos (caixa)
	api.HandleFunc("/lancamentos", lancamentoHandler.Criar).Methods("POST")
	api.HandleFunc("/lancamentos/{id}", lancamentoHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/lancamentos/{id}/confirmar", lancamentoHandler.Confirmar).Methods("PATCH")
	api.HandleFunc("/lancamentos/{id}/comissao", comissaoHandler.BuscarPorLancamento).Methods("GET")
	api.HandleFunc("/lancamentos/{id}/pagamentos", pagamentoHandler.ListarPorLancamento).Methods("GET")

	// Cobranças no gateway
	api.HandleFunc("/lancamentos/{id}/cobranca", cobrancaHandler.Criar).Methods("POST")
	api.HandleFunc("/cobrancas", cobrancaHandler.Listar).Methods("GET")
	api.HandleFunc("/cobrancas/{gatewayId}", cobrancaHandler.Buscar).Methods("GET")
	api.HandleFunc("/cobrancas/{gatewayId}/qrcode", cobrancaHandler.QRCode).Methods("GET")
	api.HandleFunc("/cobrancas/{gatewayId}/receber-em-dinheiro", cobrancaHandler.ReceberEmDinheiro).Methods("POST")

	// Espelho de pagamentos
	api.HandleFunc("/pagamentos/{gatewayId}", pagamentoHandler.BuscarEspelho).Methods("GET")

	// Rotas administrativas
	admin := api.NewRoute().Subrouter()
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/barbeiros", barbeiroHandler.CriarBarbeiro).Methods("POST")
	admin.HandleFunc("/barbeiros/{id}", barbeiroHandler.DeletarBarbeiro).Methods("DELETE")
	admin.HandleFunc("/servicos", servicoHandler.Criar).Methods("POST")
	admin.HandleFunc("/servicos/{id}", servicoHandler.Atualizar).Methods("PUT")
	admin.HandleFunc("/servicos/{id}", servicoHandler.Deletar).Methods("DELETE")
	admin.HandleFunc("/politicas-comissao", politicaHandler.Upsert).Methods("PUT")
	admin.HandleFunc("/politicas-comissao/{id}", politicaHandler.Desativar).Methods("DELETE")
	admin.HandleFunc("/lancamentos/{id}/ajustes", comissaoHandler.AplicarAjuste).Methods("POST")
	admin.HandleFunc("/lancamentos/{id}/liquidar", comissaoHandler.Reprocessar).Methods("POST")
	admin.HandleFunc("/webhooks/eventos-com-erro", pagamentoHandler.ListarEventosComErro).Methods("GET")

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}

	logger.Info("servidor iniciado", zap.String("porta", porta))
	log.Fatal(http.ListenAndServe(":"+porta, handler))
}
