package registry

import "github.com/google/uuid"

// Client is a charter customer.
type Client struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	CNPJ        string    `json:"cnpj,omitempty"`
}

// Aircraft is a managed airframe.
type Aircraft struct {
	ID           uuid.UUID `json:"id"`
	Registration string    `json:"registration"`
	Model        string    `json:"model"`
	Status       string    `json:"status"`
}

// CrewMember is a pilot referenced by name in reports and by CANAC in logbooks.
type CrewMember struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	CANAC    string    `json:"canac"`
	Status   string    `json:"status"`
}

// ListFilter narrows registry listings.
type ListFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}
