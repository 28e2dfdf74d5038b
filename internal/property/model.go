// Package property provides the listing and development domain model,
// the search query, and the in-memory filter engine.
package property

import (
	"fmt"
	"slices"
	"strings"
)

// Type is the kind of real-estate unit.
type Type string

const (
	TypeApartment  Type = "apartamento"
	TypeHouse      Type = "casa"
	TypeLand       Type = "terreno"
	TypeCommercial Type = "comercial"
)

// Types lists every known listing type in display order.
var Types = []Type{TypeApartment, TypeHouse, TypeLand, TypeCommercial}

// IsValid checks if a listing type is recognized.
func (t Type) IsValid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the listing type.
func (t Type) Label() string {
	switch t {
	case TypeApartment:
		return "Apartamento"
	case TypeHouse:
		return "Casa"
	case TypeLand:
		return "Terreno"
	case TypeCommercial:
		return "Comercial"
	default:
		return string(t)
	}
}

// Transaction is how a listing is offered.
type Transaction string

const (
	TransactionSale Transaction = "venda"
	TransactionRent Transaction = "aluguel"
)

// Transactions lists every known transaction in display order.
var Transactions = []Transaction{TransactionSale, TransactionRent}

// IsValid checks if a transaction is recognized.
func (t Transaction) IsValid() bool {
	return t == TransactionSale || t == TransactionRent
}

// Label returns a human-readable label for the transaction.
func (t Transaction) Label() string {
	switch t {
	case TransactionSale:
		return "Venda"
	case TransactionRent:
		return "Aluguel"
	default:
		return string(t)
	}
}

// Status is the construction stage of a development.
type Status string

const (
	StatusUnderConstruction Status = "em-construcao"
	StatusLaunch            Status = "lancamento"
	StatusReady             Status = "pronto-para-morar"
	StatusOffPlan           Status = "na-planta"
)

// IsValid checks if a development status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnderConstruction, StatusLaunch, StatusReady, StatusOffPlan:
		return true
	}
	return false
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusUnderConstruction:
		return "Em Construção"
	case StatusLaunch:
		return "Lançamento"
	case StatusReady:
		return "Pronto para Morar"
	case StatusOffPlan:
		return "Na Planta"
	default:
		return string(s)
	}
}

// Address locates a listing or development.
type Address struct {
	Street       string `json:"rua"`
	Neighborhood string `json:"bairro"`
	City         string `json:"cidade"`
	State        string `json:"estado"`
}

// String formats the full address as "street, neighborhood - city/state".
func (a Address) String() string {
	return fmt.Sprintf("%s, %s - %s/%s", a.Street, a.Neighborhood, a.City, a.State)
}

// Short formats only neighborhood and city.
func (a Address) Short() string {
	return fmt.Sprintf("%s, %s", a.Neighborhood, a.City)
}

// Features holds the physical attributes of a listing.
type Features struct {
	Bedrooms  int     `json:"quartos"`
	Bathrooms int     `json:"banheiros"`
	Parking   int     `json:"vagas"`
	Area      float64 `json:"area"` // m²
}

// Listing is a single unit for sale or rent.
type Listing struct {
	ID              int64       `json:"id"`
	Title           string      `json:"titulo"`
	Description     string      `json:"descricao"`
	Type            Type        `json:"tipo"`
	Transaction     Transaction `json:"transacao"`
	Price           float64     `json:"preco"`
	Address         Address     `json:"endereco"`
	Features        Features    `json:"caracteristicas"`
	Images          []string    `json:"imagens"`
	Featured        bool        `json:"destaque"`
	Available       bool        `json:"disponivel"`
	DevelopmentID   *int64      `json:"empreendimentoId,omitempty"`
	DevelopmentName string      `json:"empreendimento,omitempty"`
}

// Validate checks the invariants every loaded listing must satisfy.
func (l *Listing) Validate() error {
	var problems []string
	if l.ID <= 0 {
		problems = append(problems, "id must be positive")
	}
	if !l.Type.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown tipo %q", l.Type))
	}
	if !l.Transaction.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown transacao %q", l.Transaction))
	}
	if l.Price < 0 {
		problems = append(problems, "preco must not be negative")
	}
	if l.Features.Bedrooms < 0 || l.Features.Bathrooms < 0 || l.Features.Parking < 0 {
		problems = append(problems, "room and parking counts must not be negative")
	}
	// Zero is how the listing tool records an unknown area.
	if l.Features.Area < 0 {
		problems = append(problems, "area must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Record: fmt.Sprintf("listing %d", l.ID), Problems: problems}
	}
	return nil
}

// Clone returns a copy of l that shares no slices or pointers with it.
func (l Listing) Clone() Listing {
	l.Images = slices.Clone(l.Images)
	if l.DevelopmentID != nil {
		id := *l.DevelopmentID
		l.DevelopmentID = &id
	}
	return l
}

// DevelopmentFeatures holds the aggregate attributes of a development.
type DevelopmentFeatures struct {
	Units  int    `json:"unidades"`
	Towers int    `json:"torres"`
	Floors int    `json:"andares"`
	Status Status `json:"status"`
}

// Development is a multi-unit building or project.
type Development struct {
	ID              int64               `json:"id"`
	Slug            string              `json:"slug"`
	Name            string              `json:"nome"`
	Address         Address             `json:"endereco"`
	Description     string              `json:"descricao"`
	FullDescription string              `json:"descricaoCompleta"`
	Features        DevelopmentFeatures `json:"caracteristicas"`
	Amenities       []string            `json:"lazer"`
	Differentiators []string            `json:"diferenciais"`
	Images          []string            `json:"imagens"`
	Featured        bool                `json:"destaque"`
	Available       bool                `json:"disponivel"`
}

// Clone returns a copy of d that shares no slices with it.
func (d Development) Clone() Development {
	d.Amenities = slices.Clone(d.Amenities)
	d.Differentiators = slices.Clone(d.Differentiators)
	d.Images = slices.Clone(d.Images)
	return d
}

// Validate checks the invariants every loaded development must satisfy.
func (d *Development) Validate() error {
	var problems []string
	if d.ID <= 0 && strings.TrimSpace(d.Slug) == "" {
		problems = append(problems, "id or slug is required")
	}
	if d.ID < 0 {
		problems = append(problems, "id must not be negative")
	}
	if d.Features.Status != "" && !d.Features.Status.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", d.Features.Status))
	}
	if d.Features.Units < 0 || d.Features.Towers < 0 || d.Features.Floors < 0 {
		problems = append(problems, "unit, tower and floor counts must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Record: fmt.Sprintf("development %d (%s)", d.ID, d.Slug), Problems: problems}
	}
	return nil
}

// Manifest names the JSON files holding every listing and development.
type Manifest struct {
	Listings     []string `json:"imoveis"`
	Developments []string `json:"empreendimentos"`
}

// ValidationError reports a record that failed validation at load time.
type ValidationError struct {
	Record   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Record, strings.Join(e.Problems, "; "))
}
