package domain

// Enrichment holds the contact attributes extracted by the language model.
// Nil fields were not found and never overwrite stored values.
type Enrichment struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Email     *string  `json:"email"`
	Location  *string  `json:"location"`
	BudgetMin *float64 `json:"budget_min"`
	BudgetMax *float64 `json:"budget_max"`
}

// IsEmpty reports whether no field carries a value.
func (e *Enrichment) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.FirstName == nil && e.LastName == nil && e.Email == nil &&
		e.Location == nil && e.BudgetMin == nil && e.BudgetMax == nil
}

// ApplyEnrichment returns a copy of lead with every non-nil enrichment value
// written over the stored one. Existing values are never erased.
func ApplyEnrichment(lead Lead, e *Enrichment) Lead {
	if e == nil {
		return lead
	}
	if e.FirstName != nil {
		lead.FirstName = e.FirstName
	}
	if e.LastName != nil {
		lead.LastName = e.LastName
	}
	if e.Email != nil {
		lead.Email = e.Email
	}
	if e.Location != nil {
		lead.Location = e.Location
	}
	if e.BudgetMin != nil {
		lead.BudgetMin = e.BudgetMin
	}
	if e.BudgetMax != nil {
		lead.BudgetMax = e.BudgetMax
	}
	lead.Enrichment = e
	return lead
}
