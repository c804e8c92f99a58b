package model

// TipoHospedagem distinguishes how a stay is billed.
type TipoHospedagem string

const (
	HospedagemComum       TipoHospedagem = "COMUM"
	HospedagemPrefeitura  TipoHospedagem = "PREFEITURA"
	HospedagemCorporativo TipoHospedagem = "CORPORATIVO"
)

// Hospedagem is a guest stay record as returned by the backend.
type Hospedagem struct {
	ID                int64          `json:"id"`
	Tipo              TipoHospedagem `json:"tipo"`
	Nome              string         `json:"nome"`
	CPF               string         `json:"cpf,omitempty"`
	DataEntrada       string         `json:"dataEntrada"`
	DataSaida         string         `json:"dataSaida,omitempty"`
	NumeroDiarias     int            `json:"numeroDiarias,omitempty"`
	ValorDiaria       float64        `json:"valorDiaria,omitempty"`
	ValorTotal        float64        `json:"valorTotal,omitempty"`
	FormaPagamento    string         `json:"formaPagamento,omitempty"`
	Observacoes       string         `json:"observacoes,omitempty"`
	NumeroQuarto      string         `json:"numeroQuarto,omitempty"`
	Ocupado           bool           `json:"ocupado"`
	Status            string         `json:"status"`
	CodigoHospedagem  string         `json:"codigoHospedagem,omitempty"`
	CriadoPor         string         `json:"criadoPor,omitempty"`
	CriadoEm          string         `json:"criadoEm,omitempty"`
}

// CheckinPayload creates a new stay.
type CheckinPayload struct {
	Nome           string         `json:"nome"`
	CPF            string         `json:"cpf,omitempty"`
	NumeroQuarto   string         `json:"numeroQuarto"`
	NumeroDiarias  int            `json:"numeroDiarias"`
	ValorDiaria    float64        `json:"valorDiaria"`
	FormaPagamento string         `json:"formaPagamento"`
	Observacoes    string         `json:"observacoes,omitempty"`
	Tipo           TipoHospedagem `json:"tipo"`
}

// CheckoutPayload closes a stay, freeing its room.
type CheckoutPayload struct {
	NumeroQuarto string `json:"numeroQuarto"`
	Descricao    string `json:"descricao"`
}

// EditarHospedagem carries the editable subset of a stay.
type EditarHospedagem struct {
	NumeroQuarto   string         `json:"numeroQuarto,omitempty"`
	NumeroDiarias  int            `json:"numeroDiarias,omitempty"`
	FormaPagamento string         `json:"formaPagamento,omitempty"`
	Observacoes    string         `json:"observacoes,omitempty"`
	Tipo           TipoHospedagem `json:"tipo,omitempty"`
}

// Quarto is a room record.
type Quarto struct {
	ID            int64   `json:"id"`
	Codigo        int64   `json:"codigo,omitempty"`
	Numero        string  `json:"numero"`
	Nome          string  `json:"nome,omitempty"`
	Tipo          string  `json:"tipo"`
	Status        string  `json:"status,omitempty"`
	ValorDiaria   float64 `json:"valorDiaria,omitempty"`
	Descricao     string  `json:"descricao,omitempty"`
	CriadoPorNome string  `json:"criadoPorNome,omitempty"`
	CriadoEm      string  `json:"criadoEm,omitempty"`
}

// ReservaStatus is the lifecycle state of a reservation.
type ReservaStatus string

const (
	ReservaPendente   ReservaStatus = "PENDENTE"
	ReservaConfirmada ReservaStatus = "CONFIRMADA"
	ReservaCancelada  ReservaStatus = "CANCELADA"
	ReservaFinalizada ReservaStatus = "FINALIZADA"
)

// Reserva is a reservation record.
type Reserva struct {
	ID                 int64         `json:"id"`
	Codigo             string        `json:"codigo,omitempty"`
	Nome               string        `json:"nome"`
	Telefone           string        `json:"telefone"`
	CPF                string        `json:"cpf"`
	Email              string        `json:"email"`
	TipoCliente        string        `json:"tipoCliente"`
	NumeroQuarto       string        `json:"numeroQuarto"`
	DataEntrada        string        `json:"dataEntrada"`
	DataSaida          string        `json:"dataSaida"`
	NumeroDiarias      int           `json:"numeroDiarias"`
	Status             ReservaStatus `json:"status"`
	Observacoes        string        `json:"observacoes,omitempty"`
	DataReserva        string        `json:"dataReserva,omitempty"`
	ValorDiaria        float64       `json:"valorDiaria,omitempty"`
	ValorTotal         float64       `json:"valorTotal,omitempty"`
	FormaPagamento     string        `json:"formaPagamento,omitempty"`
	MotivoCancelamento string        `json:"motivoCancelamento,omitempty"`
}

// TipoLancamento marks a ledger entry as income or expense.
type TipoLancamento string

const (
	LancamentoEntrada TipoLancamento = "ENTRADA"
	LancamentoSaida   TipoLancamento = "SAIDA"
)

// Lancamento is a financial ledger entry.
type Lancamento struct {
	ID              int64          `json:"id"`
	Codigo          string         `json:"codigo,omitempty"`
	Tipo            TipoLancamento `json:"tipo"`
	Origem          string         `json:"origem"`
	ReferenciaID    int64          `json:"referenciaId,omitempty"`
	Data            string         `json:"data"`
	CriadoEm        string         `json:"criadoEm,omitempty"`
	Valor           float64        `json:"valor"`
	FormaPagamento  string         `json:"formaPagamento,omitempty"`
	Descricao       string         `json:"descricao"`
	CriadoPorNome   string         `json:"criadoPorNome,omitempty"`
	Cancelado       bool           `json:"cancelado,omitempty"`
	CanceladoEm     string         `json:"canceladoEm,omitempty"`
	CanceladoPor    string         `json:"canceladoPorNome,omitempty"`
	CanceladoMotivo string         `json:"canceladoMotivo,omitempty"`
}

// Usuario is a managed user account (the usuarios page).
type Usuario struct {
	ID                 int64  `json:"id"`
	Nome               string `json:"nome"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Numero             string `json:"numero,omitempty"`
	Perfil             string `json:"perfil"`
	Status             string `json:"status"`
	Tema               string `json:"tema,omitempty"`
	MustChangePassword bool   `json:"mustChangePassword,omitempty"`
	CriadoEm           string `json:"criadoEm,omitempty"`
}

// Kpis is the dashboard headline block.
type Kpis struct {
	OcupacaoAtual     int     `json:"ocupacaoAtual"`
	QuartosLivres     int     `json:"quartosLivres"`
	CheckinsHoje      int     `json:"checkinsHoje"`
	CheckoutsHoje     int     `json:"checkoutsHoje"`
	ReservasPendentes int     `json:"reservasPendentes"`
	SaldoDia          float64 `json:"saldoDia"`
}

// SerieDia is a single day in a dashboard time series.
type SerieDia struct {
	Data  string  `json:"data"`
	Valor float64 `json:"valor"`
}

// DashboardOverview aggregates everything the dashboard page renders.
type DashboardOverview struct {
	Kpis            Kpis         `json:"kpis"`
	SerieFinanceiro []SerieDia   `json:"serieFinanceiro"`
	SerieOcupacao   []SerieDia   `json:"serieOcupacao"`
	Movimentos      []Lancamento `json:"movimentos"`
}

// PeriodoFilter bounds a report to a date interval (YYYY-MM-DD).
type PeriodoFilter struct {
	Inicio string `json:"inicio"`
	Fim    string `json:"fim"`
}
