package dge

// SCFRequest holds the inputs of a finance request.
type SCFRequest struct {
	Requested    Money   `json:"requested"`
	InterestRate Percent `json:"interest_rate"`
	DurationDays int     `json:"duration_days"`
}

// Quote is the valuation and optional finance terms of goods that are not
// recorded yet.
type Quote struct {
	Category  Category    `json:"category"`
	Original  Money       `json:"original_price"`
	Valuation Valuation   `json:"valuation"`
	MaxSCF    Money       `json:"max_scf"`       // the most that can be financed
	SCF       *SCFDetails `json:"scf,omitempty"` // nil if no finance was requested
}

// Quote values goods and, if req is not nil, computes the finance terms.
func (t *CategoryTable) Quote(category Category, original Money, override *Percent, req *SCFRequest) (Quote, error) {
	v, err := t.Valuate(category, original, override)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{Category: category, Original: original, Valuation: v, MaxSCF: MaxSCF(v.Price)}
	if req != nil {
		s, err := ComputeSCFTerms(v.Price, req.Requested, req.InterestRate, req.DurationDays)
		if err != nil {
			return Quote{}, err
		}
		q.SCF = &s
	}
	return q, nil
}
