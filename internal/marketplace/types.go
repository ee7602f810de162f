package marketplace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// ID is an opaque backend identifier. The backend emits integer primary keys but
// callers treat ids as strings, so both JSON numbers and strings decode.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("marketplace id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Stats is the opaque summary returned by the dashboard endpoint.
type Stats map[string]any

// Keys returns the stat names in a stable order.
func (s Stats) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Value renders one stat for display.
func (s Stats) Value(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// PendingGig is a tutoring offer awaiting approval.
type PendingGig struct {
	ID            ID
	Title         string
	Subject       string
	SubmitterName string
	CreatedAt     *time.Time
}

func (g *PendingGig) UnmarshalJSON(data []byte) error {
	var payload struct {
		ID              ID     `json:"id"`
		Title           string `json:"title"`
		Subject         string `json:"subject"`
		TeacherUsername string `json:"teacher_username"`
		Tutor           ID     `json:"tutor"`
		CreatedAt       string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	submitter := strings.TrimSpace(payload.TeacherUsername)
	if submitter == "" && payload.Tutor != "" {
		submitter = "tutor #" + payload.Tutor.String()
	}
	*g = PendingGig{
		ID:            payload.ID,
		Title:         sanitizeText(payload.Title),
		Subject:       sanitizeText(payload.Subject),
		SubmitterName: sanitizeText(submitter),
		CreatedAt:     parseOptionalTime(payload.CreatedAt),
	}
	return nil
}

// AbuseReport is a complaint filed against a marketplace actor.
type AbuseReport struct {
	ID              ID
	Message         string
	TargetType      string
	TargetID        ID
	ReportedActorID ID
	CreatedAt       *time.Time
}

func (r *AbuseReport) UnmarshalJSON(data []byte) error {
	var payload struct {
		ID             ID     `json:"id"`
		Message        string `json:"message"`
		Description    string `json:"description"`
		TargetType     string `json:"target_type"`
		TargetID       ID     `json:"target_id"`
		ReportedUserID ID     `json:"reported_user_id"`
		ReportedUser   ID     `json:"reported_user"`
		CreatedAt      string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	message := payload.Message
	if strings.TrimSpace(message) == "" {
		message = payload.Description
	}
	actor := payload.ReportedUserID
	if actor == "" {
		actor = payload.ReportedUser
	}
	*r = AbuseReport{
		ID:              payload.ID,
		Message:         sanitizeText(message),
		TargetType:      sanitizeText(payload.TargetType),
		TargetID:        payload.TargetID,
		ReportedActorID: actor,
		CreatedAt:       parseOptionalTime(payload.CreatedAt),
	}
	return nil
}

// CanBlock reports whether the report names an actor that can be blocked.
func (r AbuseReport) CanBlock() bool {
	return r.ReportedActorID != ""
}

// TokenPair is the result of an operator login.
type TokenPair struct {
	Access  string
	Refresh string
}

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup from user-submitted text. Views escape on output,
// so entities produced by the policy are decoded again.
func sanitizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func parseOptionalTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
