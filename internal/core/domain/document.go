package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType distinguishes quotes from invoices. The type determines the
// default number prefix (QT / INV).
type DocumentType string

const (
	DocumentTypeQuote   DocumentType = "quote"
	DocumentTypeInvoice DocumentType = "invoice"
)

// DocumentStatus represents the lifecycle state of a quote or invoice.
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusSent     DocumentStatus = "sent"
	DocumentStatusAccepted DocumentStatus = "accepted" // quotes only
	DocumentStatusRejected DocumentStatus = "rejected" // quotes only
	DocumentStatusPaid     DocumentStatus = "paid"     // invoices only
	DocumentStatusOverdue  DocumentStatus = "overdue"  // invoices only
)

var quoteTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft: {DocumentStatusSent},
	DocumentStatusSent:  {DocumentStatusAccepted, DocumentStatusRejected},
}

var invoiceTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:   {DocumentStatusSent},
	DocumentStatusSent:    {DocumentStatusPaid, DocumentStatusOverdue},
	DocumentStatusOverdue: {DocumentStatusPaid},
}

// LineItem is one billable row on a document. Amounts are in halalas.
type LineItem struct {
	DescriptionAr string `json:"description_ar"`
	DescriptionEn string `json:"description_en,omitempty"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	Total         int64  `json:"total"`
}

// Document represents a quote or an invoice. The Number field is assigned
// once at creation and never changes afterward.
type Document struct {
	ID        uuid.UUID      `json:"id"`
	DocType   DocumentType   `json:"doc_type"`
	Number    string         `json:"number"`
	ClientID  uuid.UUID      `json:"client_id"`
	ProjectID *uuid.UUID     `json:"project_id,omitempty"`
	Items     []LineItem     `json:"items"`
	Subtotal  int64          `json:"subtotal"`
	TaxRate   int64          `json:"tax_rate"` // Basis points, e.g. 1500 = 15%
	Tax       int64          `json:"tax"`
	Total     int64          `json:"total"`
	Status    DocumentStatus `json:"status"`
	Notes     string         `json:"notes,omitempty"`
	IssuedAt  time.Time      `json:"issued_at"`
	DueAt     *time.Time     `json:"due_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CanTransitionTo reports whether the status move is allowed for this
// document type.
func (d *Document) CanTransitionTo(target DocumentStatus) bool {
	transitions := quoteTransitions
	if d.DocType == DocumentTypeInvoice {
		transitions = invoiceTransitions
	}
	for _, next := range transitions[d.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// IsConvertible reports whether a quote can be turned into an invoice.
func (d *Document) IsConvertible() bool {
	return d.DocType == DocumentTypeQuote && d.Status == DocumentStatusAccepted
}
