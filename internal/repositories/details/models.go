package details

import (
	"github.com/Tonooka01/sistema-analise/internal/repositories"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/filters"
)

const (
	// DefaultContractLimit pages the per-contract lookups.
	DefaultContractLimit = 15
	// DefaultClientLimit pages the client lists behind chart drill-downs.
	DefaultClientLimit = 25
)

const (
	msgInvoiceParams      = "ID do contrato e tipo de análise são obrigatórios."
	msgInvoiceType        = "Tipo de análise inválido."
	msgComplaintType      = "Tipo de 'complaint' inválido."
	msgSellerParams       = "ID do vendedor e tipo de cliente são obrigatórios."
	msgClientType         = "Tipo de cliente inválido."
	msgCityParams         = "Cidade e tipo de cliente são obrigatórios."
	msgNeighborhoodParams = "Cidade, bairro e tipo de cliente são obrigatórios."
	msgEquipmentName      = "O nome do equipamento é obrigatório."
	msgMonth              = "Mês inválido."
)

// Invoice analysis types.
const (
	LatePaid = "atrasos_pagos"
	Unpaid   = "faturas_nao_pagas"
)

// Complaint sources.
const (
	ComplaintOS           = "os"
	ComplaintAtendimentos = "atendimentos"
)

// Client list types.
const (
	TypeCancelado      = "cancelado"
	TypeNegativado     = "negativado"
	TypeAtivado        = "ativado"
	TypeAtivoPermanece = "ativo_permanece"
)

// Table is the envelope of a paginated drill-down.
type Table[T any] struct {
	Data      []T   `json:"data"`
	TotalRows int64 `json:"total_rows"`
}

type InvoiceDetails struct {
	Table[Invoice]
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type Invoice struct {
	ID            database.Text `db:"ID" json:"ID"`
	Vencimento    database.Text `db:"Vencimento" json:"Vencimento"`
	Emissao       database.Text `db:"Emissao" json:"Emissao"`
	DataPagamento database.Text `db:"Data_pagamento" json:"Data_pagamento"`
	Valor         *float64      `db:"Valor" json:"Valor"`
	Status        database.Text `db:"Status" json:"Status"`
}

type Installment struct {
	ID            database.Text `db:"ID" json:"ID"`
	Parcela       database.Text `db:"Parcela_R" json:"Parcela_R"`
	Emissao       database.Text `db:"Emissao" json:"Emissao"`
	Vencimento    database.Text `db:"Vencimento" json:"Vencimento"`
	DataPagamento database.Text `db:"Data_pagamento" json:"Data_pagamento"`
	Valor         *float64      `db:"Valor" json:"Valor"`
	Status        database.Text `db:"Status" json:"Status"`
}

type ServiceOrder struct {
	ID       database.Text `db:"ID" json:"ID"`
	Abertura database.Text `db:"Abertura" json:"Abertura"`
	Assunto  database.Text `db:"Assunto" json:"Assunto"`
	Status   database.Text `db:"Status" json:"Status"`
}

type Attendance struct {
	ID         database.Text `db:"ID" json:"ID"`
	CriadoEm   database.Text `db:"Criado_em" json:"Criado_em"`
	Assunto    database.Text `db:"Assunto" json:"Assunto"`
	NovoStatus database.Text `db:"Novo_status" json:"Novo_status"`
}

type Login struct {
	Login         database.Text `db:"Login" json:"Login"`
	UltimaConexao database.Text `db:"ltima_conex_o_inicial" json:"ltima_conex_o_inicial"`
	SinalRX       database.Text `db:"Sinal_RX" json:"Sinal_RX"`
	ONUTipo       database.Text `db:"ONU_tipo" json:"ONU_tipo"`
	IPV4          database.Text `db:"IPV4" json:"IPV4"`
	Transmissor   database.Text `db:"Transmissor" json:"Transmissor"`
}

type Loan struct {
	Descricao database.Text `db:"Descricao_produto" json:"Descricao_produto"`
	Status    database.Text `db:"Status_comodato" json:"Status_comodato"`
}

// CancellationContext is everything known about a churned customer.
type CancellationContext struct {
	Equipamentos []ContextEquipment  `json:"equipamentos"`
	OS           []ContextOrder      `json:"os"`
	Atendimentos []ContextAttendance `json:"atendimentos"`
}

type ContextEquipment struct {
	Descricao database.Text `db:"Descricao_produto" json:"Descricao_produto"`
	Status    database.Text `db:"Status_comodato" json:"Status_comodato"`
	Data      database.Text `db:"Data" json:"Data"`
}

type ContextOrder struct {
	ID         database.Text `db:"ID" json:"ID"`
	Abertura   database.Text `db:"Abertura" json:"Abertura"`
	Fechamento database.Text `db:"Fechamento" json:"Fechamento"`
	SLA        database.Text `db:"SLA" json:"SLA"`
	Assunto    database.Text `db:"Assunto" json:"Assunto"`
	Mensagem   database.Text `db:"Mensagem" json:"Mensagem"`
}

type ContextAttendance struct {
	ID              database.Text `db:"ID" json:"ID"`
	CriadoEm        database.Text `db:"Criado_em" json:"Criado_em"`
	UltimaAlteracao database.Text `db:"ltima_altera_o" json:"ltima_altera_o"`
	Assunto         database.Text `db:"Assunto" json:"Assunto"`
	NovoStatus      database.Text `db:"Novo_status" json:"Novo_status"`
	Descricao       database.Text `db:"Descri_o" json:"Descri_o"`
}

// ChurnedClient is a row of the seller, city and neighborhood drill-downs.
type ChurnedClient struct {
	Cliente          database.Text `db:"Cliente" json:"Cliente"`
	ContratoID       database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	DataAtivacao     database.Text `db:"Data_ativa_o" json:"Data_ativa_o"`
	EndDate          database.Text `db:"end_date" json:"end_date"`
	PermanenciaDias  *int64        `db:"permanencia_dias" json:"permanencia_dias"`
	PermanenciaMeses *int64        `db:"permanencia_meses" json:"permanencia_meses"`
}

// ClientFilter narrows the churned-client drill-downs. Type is cancelado or
// negativado; Month is normalized to two digits.
type ClientFilter struct {
	Type         string
	Seller       int64
	City         string
	Neighborhood string
	Year, Month  string
	Range        filters.DateRange
	Relevance    filters.Relevance
	Page         repositories.Page
}

type EquipmentClient struct {
	Cliente          database.Text `db:"Cliente" json:"Cliente"`
	ContratoID       database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	DataCancelamento database.Text `db:"Data_cancelamento" json:"Data_cancelamento"`
	DataNegativacao  database.Text `db:"Data_negativacao" json:"Data_negativacao"`
	Cidade           database.Text `db:"Cidade" json:"Cidade"`
	PermanenciaMeses *int64        `db:"permanencia_meses" json:"permanencia_meses"`
}

type EquipmentFilter struct {
	Name      string
	City      string
	Range     filters.DateRange
	Relevance filters.Relevance
	Page      repositories.Page
}

type ActiveClient struct {
	Cliente        database.Text `db:"Cliente" json:"Cliente"`
	ContratoID     database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	DataAtivacao   database.Text `db:"Data_ativa_o" json:"Data_ativa_o"`
	Cidade         database.Text `db:"Cidade" json:"Cidade"`
	StatusContrato database.Text `db:"Status_contrato" json:"Status_contrato"`
}

type ActivationClient struct {
	Cliente          database.Text `db:"Cliente" json:"Cliente"`
	ContratoID       database.Text `db:"Contrato_ID" json:"Contrato_ID"`
	DataAtivacao     database.Text `db:"Data_ativa_o" json:"Data_ativa_o"`
	StatusContrato   database.Text `db:"Status_contrato" json:"Status_contrato"`
	EndDate          database.Text `db:"end_date" json:"end_date"`
	PermanenciaMeses *int64        `db:"permanencia_meses" json:"permanencia_meses"`
}

// ActivationFilter narrows a seller's activations; Year and Month match the
// activation date.
type ActivationFilter struct {
	Seller      int64
	Type        string
	City        string
	Year, Month string
	Page        repositories.Page
}
