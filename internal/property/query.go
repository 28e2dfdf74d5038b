package property

import (
	"net/url"
	"strconv"
	"strings"
)

// SortKey selects the ordering of search results.
type SortKey string

const (
	SortDefault   SortKey = ""
	SortPriceAsc  SortKey = "preco-asc"
	SortPriceDesc SortKey = "preco-desc"
	SortAreaAsc   SortKey = "area-asc"
	SortAreaDesc  SortKey = "area-desc"
	SortRecent    SortKey = "recentes"
)

// anyValue is the form sentinel meaning "no constraint".
const anyValue = "todos"

// Query is the set of active filter and sort constraints for a search.
// A nil pointer or empty value leaves the corresponding field unconstrained.
// JSON keys match the site's form field names so saved queries stay readable.
type Query struct {
	Type            Type        `json:"tipo,omitempty"`
	Transaction     Transaction `json:"transacao,omitempty"`
	DevelopmentID   *int64      `json:"empreendimentoId,omitempty"`
	DevelopmentName string      `json:"empreendimento,omitempty"`
	Neighborhoods   []string    `json:"bairros,omitempty"`
	PriceMin        *float64    `json:"precoMin,omitempty"`
	PriceMax        *float64    `json:"precoMax,omitempty"`
	MinBedrooms     *int        `json:"quartos,omitempty"`
	MinBathrooms    *int        `json:"banheiros,omitempty"`
	MinParking      *int        `json:"vagas,omitempty"`
	AreaMin         *float64    `json:"areaMin,omitempty"`
	Text            string      `json:"busca,omitempty"`
	Sort            SortKey     `json:"ordenacao,omitempty"`
}

// IsEmpty reports whether the query constrains nothing.
func (q Query) IsEmpty() bool {
	return q.Type == "" && q.Transaction == "" && q.DevelopmentID == nil &&
		q.DevelopmentName == "" && len(q.Neighborhoods) == 0 &&
		q.PriceMin == nil && q.PriceMax == nil &&
		q.MinBedrooms == nil && q.MinBathrooms == nil && q.MinParking == nil &&
		q.AreaMin == nil && q.Text == "" && q.Sort == SortDefault
}

// ParseQuery builds a Query from form or URL values.
// Malformed numbers are ignored rather than rejected, leaving that
// constraint unapplied.
func ParseQuery(v url.Values) Query {
	var q Query

	if s := strings.TrimSpace(v.Get("tipo")); s != "" && s != anyValue {
		q.Type = Type(s)
	}
	if s := strings.TrimSpace(v.Get("transacao")); s != "" && s != anyValue {
		q.Transaction = Transaction(s)
	}
	if s := strings.TrimSpace(v.Get("empreendimento")); s != "" && s != anyValue {
		q.DevelopmentName = s
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(v.Get("empreendimentoId")), 10, 64); err == nil {
		q.DevelopmentID = &n
	}

	for _, b := range v["bairros"] {
		if b = strings.TrimSpace(b); b != "" {
			q.Neighborhoods = append(q.Neighborhoods, b)
		}
	}

	q.PriceMin = parseFloat(v.Get("precoMin"))
	q.PriceMax = parseFloat(v.Get("precoMax"))
	q.AreaMin = parseFloat(v.Get("areaMin"))
	q.MinBedrooms = parseInt(v.Get("quartos"))
	q.MinBathrooms = parseInt(v.Get("banheiros"))
	q.MinParking = parseInt(v.Get("vagas"))

	q.Text = strings.TrimSpace(v.Get("busca"))
	q.Sort = SortKey(strings.TrimSpace(v.Get("ordenacao")))

	return q
}

// Values encodes the query back into form values, the inverse of ParseQuery.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Type != "" {
		v.Set("tipo", string(q.Type))
	}
	if q.Transaction != "" {
		v.Set("transacao", string(q.Transaction))
	}
	if q.DevelopmentID != nil {
		v.Set("empreendimentoId", strconv.FormatInt(*q.DevelopmentID, 10))
	}
	if q.DevelopmentName != "" {
		v.Set("empreendimento", q.DevelopmentName)
	}
	for _, b := range q.Neighborhoods {
		v.Add("bairros", b)
	}
	setFloat(v, "precoMin", q.PriceMin)
	setFloat(v, "precoMax", q.PriceMax)
	setFloat(v, "areaMin", q.AreaMin)
	setInt(v, "quartos", q.MinBedrooms)
	setInt(v, "banheiros", q.MinBathrooms)
	setInt(v, "vagas", q.MinParking)
	if q.Text != "" {
		v.Set("busca", q.Text)
	}
	if q.Sort != SortDefault {
		v.Set("ordenacao", string(q.Sort))
	}
	return v
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

func setInt(v url.Values, key string, n *int) {
	if n != nil {
		v.Set(key, strconv.Itoa(*n))
	}
}

// Tag is a human-readable summary of one active constraint. Key names the
// form field that Without removes.
type Tag struct {
	Key   string `json:"chave"`
	Label string `json:"texto"`
}

// Tags describes the active constraints of q, in form order.
func (q Query) Tags() []Tag {
	var tags []Tag
	add := func(key, label string) { tags = append(tags, Tag{Key: key, Label: label}) }

	if q.Type != "" {
		add("tipo", "Tipo: "+q.Type.Label())
	}
	if q.Transaction != "" {
		add("transacao", "Transação: "+q.Transaction.Label())
	}
	if q.DevelopmentName != "" {
		add("empreendimento", "Empreendimento: "+q.DevelopmentName)
	}
	if len(q.Neighborhoods) > 0 {
		add("bairros", "Bairros: "+strings.Join(q.Neighborhoods, ", "))
	}
	if q.PriceMin != nil || q.PriceMax != nil {
		lo, hi := "0", "∞"
		if q.PriceMin != nil {
			lo = strconv.FormatFloat(*q.PriceMin, 'f', -1, 64)
		}
		if q.PriceMax != nil {
			hi = strconv.FormatFloat(*q.PriceMax, 'f', -1, 64)
		}
		add("preco", "Preço: R$ "+lo+" - "+hi)
	}
	if q.MinBedrooms != nil && *q.MinBedrooms > 0 {
		add("quartos", strconv.Itoa(*q.MinBedrooms)+"+ quartos")
	}
	if q.MinBathrooms != nil && *q.MinBathrooms > 0 {
		add("banheiros", strconv.Itoa(*q.MinBathrooms)+"+ banheiros")
	}
	if q.MinParking != nil && *q.MinParking > 0 {
		add("vagas", strconv.Itoa(*q.MinParking)+"+ vagas")
	}
	if q.AreaMin != nil && *q.AreaMin > 0 {
		add("areaMin", "Área mín: "+strconv.FormatFloat(*q.AreaMin, 'f', -1, 64)+"m²")
	}
	if q.Text != "" {
		add("busca", `Busca: "`+q.Text+`"`)
	}
	return tags
}

// Without returns a copy of q with the constraint named by key removed.
// "preco" clears both price bounds. Unknown keys return q unchanged.
func (q Query) Without(key string) Query {
	switch key {
	case "tipo":
		q.Type = ""
	case "transacao":
		q.Transaction = ""
	case "empreendimentoId":
		q.DevelopmentID = nil
	case "empreendimento":
		q.DevelopmentName = ""
	case "bairros":
		q.Neighborhoods = nil
	case "preco":
		q.PriceMin, q.PriceMax = nil, nil
	case "precoMin":
		q.PriceMin = nil
	case "precoMax":
		q.PriceMax = nil
	case "quartos":
		q.MinBedrooms = nil
	case "banheiros":
		q.MinBathrooms = nil
	case "vagas":
		q.MinParking = nil
	case "areaMin":
		q.AreaMin = nil
	case "busca":
		q.Text = ""
	case "ordenacao":
		q.Sort = SortDefault
	}
	return q
}
