// internal/asaas/types.go
package asaas

// Cobranca é o espelho da entidade "payment" do Asaas.
type Cobranca struct {
	ID                string  `json:"id"`
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	NetValue          float64 `json:"netValue"`
	Status            string  `json:"status"`
	DueDate           string  `json:"dueDate"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
	PaymentDate       string  `json:"paymentDate,omitempty"`
	InvoiceUrl        string  `json:"invoiceUrl,omitempty"`
	DateCreated       string  `json:"dateCreated,omitempty"`
}

// CriarCobrancaRequest é o corpo de criação de cobrança.
type CriarCobrancaRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	DueDate           string  `json:"dueDate"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

// FiltroCobrancas são os parâmetros de listagem aceitos pelo gateway.
type FiltroCobrancas struct {
	Customer          string
	Status            string
	ExternalReference string
	Offset            int
	Limit             int
}

// ListaCobrancas é a resposta paginada do gateway.
type ListaCobrancas struct {
	Object     string     `json:"object"`
	HasMore    bool       `json:"hasMore"`
	TotalCount int        `json:"totalCount"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	Data       []Cobranca `json:"data"`
}

// PixQRCode é o retorno do QR Code de uma cobrança PIX.
type PixQRCode struct {
	EncodedImage   string `json:"encodedImage"`
	Payload        string `json:"payload"`
	ExpirationDate string `json:"expirationDate"`
}

// RecebimentoEmDinheiroRequest confirma recebimento em espécie no balcão.
type RecebimentoEmDinheiroRequest struct {
	PaymentDate    string  `json:"paymentDate"`
	Value          float64 `json:"value"`
	NotifyCustomer bool    `json:"notifyCustomer"`
}

// erroAPI é o envelope de erro retornado pelo Asaas.
type erroAPI struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}
