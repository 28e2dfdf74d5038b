package property

import "math"

// Stats summarizes the listing catalog.
type Stats struct {
	Total         int                 `json:"total"`
	Available     int                 `json:"disponiveis"`
	ByTransaction map[Transaction]int `json:"porTransacao"`
	ByType        map[Type]int        `json:"porTipo"`
	AveragePrice  int64               `json:"precoMedio"`
}

// ComputeStats counts available listings by transaction and type and
// averages their price, rounded to the nearest integer. Every known
// transaction and type is present in the maps, with zero when unused.
func ComputeStats(listings []Listing) Stats {
	s := Stats{
		Total:         len(listings),
		ByTransaction: make(map[Transaction]int, len(Transactions)),
		ByType:        make(map[Type]int, len(Types)),
	}
	for _, t := range Transactions {
		s.ByTransaction[t] = 0
	}
	for _, t := range Types {
		s.ByType[t] = 0
	}

	var sum float64
	for _, l := range listings {
		if !l.Available {
			continue
		}
		s.Available++
		s.ByTransaction[l.Transaction]++
		s.ByType[l.Type]++
		sum += l.Price
	}

	if s.Available > 0 {
		s.AveragePrice = int64(math.Round(sum / float64(s.Available)))
	}
	return s
}
