// Package documents implements the Beleg, Invoice and Order lifecycles.
// Statuses form a closed set per document type; every transition is
// checked against an explicit table rather than ad hoc conditionals.
package documents

import "github.com/kontor-dev/kontor/internal/model"

// transitions lists the legal status moves per document type.
var transitions = map[model.DocumentType]map[model.DocumentStatus][]model.DocumentStatus{
	model.DocumentTypeBeleg: {
		model.StatusDraft:  {model.StatusBooked, model.StatusCancelled},
		model.StatusBooked: {model.StatusPaid, model.StatusCancelled},
	},
	model.DocumentTypeInvoice: {
		model.StatusDraft:  {model.StatusBooked, model.StatusCancelled},
		model.StatusBooked: {model.StatusSent, model.StatusPaid, model.StatusCancelled},
		model.StatusSent:   {model.StatusPaid, model.StatusCancelled},
	},
	model.DocumentTypeOrder: {
		model.StatusOpen:             {model.StatusPartialDelivered, model.StatusDelivered},
		model.StatusPartialDelivered: {model.StatusDelivered},
		model.StatusDelivered:        {model.StatusPartialInvoiced, model.StatusInvoiced},
		model.StatusPartialInvoiced:  {model.StatusInvoiced},
		model.StatusInvoiced:         {model.StatusCompleted},
	},
}

// InitialStatus returns the state a new document of type t starts in.
func InitialStatus(t model.DocumentType) model.DocumentStatus {
	if t == model.DocumentTypeOrder {
		return model.StatusOpen
	}
	return model.StatusDraft
}

// CanTransition reports whether a document of type t may move from one
// status to another.
func CanTransition(t model.DocumentType, from, to model.DocumentStatus) bool {
	for _, next := range transitions[t][from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether status has no outgoing transitions for type t.
func Terminal(t model.DocumentType, status model.DocumentStatus) bool {
	return len(transitions[t][status]) == 0
}
