package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	LeadStatusNew       = "New"
	LeadStatusContacted = "Contacted"
)

// LeadID identifies a lead within one load of the sheet. Positional ids are
// derived from the row order and encode as JSON numbers; explicit ids encode
// as strings.
type LeadID struct {
	Value      string
	Positional bool
}

func ExplicitID(v string) LeadID {
	return LeadID{Value: v}
}

func PositionalID(position int) LeadID {
	return LeadID{Value: strconv.Itoa(position), Positional: true}
}

func (id LeadID) String() string {
	return id.Value
}

func (id LeadID) IsZero() bool {
	return id.Value == ""
}

func (id LeadID) MarshalJSON() ([]byte, error) {
	if id.Positional {
		return []byte(id.Value), nil
	}
	return json.Marshal(id.Value)
}

// UnmarshalJSON accepts both "7" and 7.
func (id *LeadID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = LeadID{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = LeadID{Value: s}
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("lead id must be a string or number: %w", err)
		}
		*id = LeadID{Value: n.String()}
		return nil
	}
}

// Lead is one row of the lead sheet.
type Lead struct {
	ID          LeadID `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	LastContact string `json:"lastContact,omitempty"`
	Notes       string `json:"notes,omitempty"`

	// Position is the 1-based index among data rows (header excluded).
	Position int `json:"-"`
}

// LeadSummary is the projection served by the lead list.
type LeadSummary struct {
	ID          LeadID `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	LastContact string `json:"lastContact,omitempty"`
}

func (l *Lead) Summary() LeadSummary {
	return LeadSummary{
		ID:          l.ID,
		Name:        l.Name,
		Phone:       l.Phone,
		Email:       l.Email,
		Status:      l.Status,
		LastContact: l.LastContact,
	}
}

// LeadUpdate carries the only fields the service may change on a row.
type LeadUpdate struct {
	Status      string
	LastContact string
	Notes       string
}

func (u LeadUpdate) Apply(l *Lead) {
	l.Status = u.Status
	l.LastContact = u.LastContact
	l.Notes = u.Notes
}

type LeadRepositoryInterface interface {
	FindAll(ctx context.Context) ([]*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	Update(ctx context.Context, id string, update LeadUpdate) (*Lead, error)
}
