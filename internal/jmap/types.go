package jmap

import (
	"encoding/json"
	"fmt"
)

// JMAP capability URNs used on every API request.
const (
	CapabilityCore = "urn:ietf:params:jmap:core"
	CapabilityMail = "urn:ietf:params:jmap:mail"
)

// Session is the JMAP session object returned by the well-known endpoint.
// Only the fields the client needs are modeled.
type Session struct {
	APIURL          string                     `json:"apiUrl"`
	Username        string                     `json:"username"`
	Accounts        map[string]json.RawMessage `json:"accounts"`
	PrimaryAccounts map[string]string          `json:"primaryAccounts"`
	State           string                     `json:"state"`
}

// Invocation is a single JMAP method call or response, serialized on the
// wire as a three-element array: [name, arguments, callId].
type Invocation struct {
	Name   string
	Args   any
	CallID string
}

// MarshalJSON encodes the invocation as the JMAP triple.
func (inv Invocation) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{inv.Name, inv.Args, inv.CallID})
}

// UnmarshalJSON decodes a JMAP triple, leaving the arguments as raw JSON
// so callers can decode them into a method-specific response type.
func (inv *Invocation) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("invocation must have 3 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &inv.Name); err != nil {
		return fmt.Errorf("invalid invocation name: %w", err)
	}
	inv.Args = parts[1]
	if err := json.Unmarshal(parts[2], &inv.CallID); err != nil {
		return fmt.Errorf("invalid invocation call id: %w", err)
	}
	return nil
}

// DecodeArgs decodes the invocation's arguments into v. It accepts both
// raw JSON (responses) and already-structured arguments (requests), so
// tests can round-trip invocations either way.
func (inv Invocation) DecodeArgs(v any) error {
	raw, ok := inv.Args.(json.RawMessage)
	if !ok {
		encoded, err := json.Marshal(inv.Args)
		if err != nil {
			return err
		}
		raw = encoded
	}
	return json.Unmarshal(raw, v)
}

// Request is the body of a JMAP API call.
type Request struct {
	Using       []string     `json:"using"`
	MethodCalls []Invocation `json:"methodCalls"`
}

// Response is the body of a JMAP API response.
type Response struct {
	MethodResponses []Invocation `json:"methodResponses"`
	SessionState    string       `json:"sessionState,omitempty"`
}

// ResultReference is a back-reference to a previous method call's result
// within the same request (RFC 8620 §3.7).
type ResultReference struct {
	ResultOf string `json:"resultOf"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// SortComparator describes a sort order for Email/query.
type SortComparator struct {
	Property    string `json:"property"`
	IsAscending bool   `json:"isAscending"`
}

// EmailFilterCondition is a leaf filter for Email/query. Zero-valued fields
// are omitted from the wire form.
type EmailFilterCondition struct {
	InMailbox     string `json:"inMailbox,omitempty"`
	Text          string `json:"text,omitempty"`
	From          string `json:"from,omitempty"`
	Subject       string `json:"subject,omitempty"`
	After         string `json:"after,omitempty"`
	Before        string `json:"before,omitempty"`
	HasAttachment *bool  `json:"hasAttachment,omitempty"`
}

// EmailFilterOperator combines filter conditions with a boolean operator.
type EmailFilterOperator struct {
	Operator   string `json:"operator"`
	Conditions []any  `json:"conditions"`
}

// Mailbox is a JMAP mailbox as returned by Mailbox/get.
type Mailbox struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ParentID     string `json:"parentId,omitempty"`
	Role         string `json:"role,omitempty"`
	TotalEmails  int64  `json:"totalEmails"`
	UnreadEmails int64  `json:"unreadEmails"`
}

// MailboxGetResponse is the response to Mailbox/get.
type MailboxGetResponse struct {
	AccountID string    `json:"accountId"`
	List      []Mailbox `json:"list"`
	NotFound  []string  `json:"notFound"`
}

// EmailAddress is a name/address pair on an email header.
type EmailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// BodyPart describes a MIME part of an email body.
type BodyPart struct {
	PartID string `json:"partId,omitempty"`
	BlobID string `json:"blobId,omitempty"`
	Type   string `json:"type,omitempty"`
	Name   string `json:"name,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

// BodyValue is the fetched content of a body part.
type BodyValue struct {
	Value       string `json:"value"`
	IsTruncated bool   `json:"isTruncated,omitempty"`
}

// Email is a JMAP email as returned by Email/get. Which fields are
// populated depends on the requested properties.
type Email struct {
	ID            string               `json:"id"`
	ThreadID      string               `json:"threadId,omitempty"`
	From          []EmailAddress       `json:"from,omitempty"`
	To            []EmailAddress       `json:"to,omitempty"`
	CC            []EmailAddress       `json:"cc,omitempty"`
	Subject       string               `json:"subject,omitempty"`
	ReceivedAt    string               `json:"receivedAt,omitempty"`
	Preview       string               `json:"preview,omitempty"`
	BodyValues    map[string]BodyValue `json:"bodyValues,omitempty"`
	TextBody      []BodyPart           `json:"textBody,omitempty"`
	HTMLBody      []BodyPart           `json:"htmlBody,omitempty"`
	HasAttachment bool                 `json:"hasAttachment,omitempty"`
	Attachments   []BodyPart           `json:"attachments,omitempty"`
}

// EmailGetResponse is the response to Email/get.
type EmailGetResponse struct {
	AccountID string   `json:"accountId"`
	List      []Email  `json:"list"`
	NotFound  []string `json:"notFound"`
}

// EmailQueryResponse is the response to Email/query.
type EmailQueryResponse struct {
	AccountID string   `json:"accountId"`
	IDs       []string `json:"ids"`
	Position  int64    `json:"position"`
	Total     int64    `json:"total"`
}

// Thread is a JMAP thread as returned by Thread/get.
type Thread struct {
	ID       string   `json:"id"`
	EmailIDs []string `json:"emailIds"`
}

// ThreadGetResponse is the response to Thread/get.
type ThreadGetResponse struct {
	AccountID string   `json:"accountId"`
	List      []Thread `json:"list"`
	NotFound  []string `json:"notFound"`
}
