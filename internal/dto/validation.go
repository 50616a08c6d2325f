package dto

// ValidateTicketRequest represents a request to validate a ticket at entry
type ValidateTicketRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
	EventID  string `json:"event_id,omitempty"`
}

// ValidationResponse represents the outcome of a ticket validation
type ValidationResponse struct {
	Valid       bool            `json:"valid"`
	AlreadyUsed bool            `json:"already_used"`
	Message     string          `json:"message"`
	Ticket      *TicketResponse `json:"ticket,omitempty"`
}

// TicketStatusResponse represents the usability status of a ticket
type TicketStatusResponse struct {
	Exists  bool            `json:"exists"`
	Used    bool            `json:"used"`
	Message string          `json:"message"`
	Ticket  *TicketResponse `json:"ticket,omitempty"`
}
