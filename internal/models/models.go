package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Role is the account type the API reports for a user.
type Role string

const (
	RoleNeighbor     Role = "neighbor"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// ParseRole maps the API's spellings onto the three dashboards. Unknown
// values fall back to the neighbor dashboard.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "organization", "organisation", "business":
		return RoleOrganization
	case "admin", "superadmin":
		return RoleAdmin
	default:
		return RoleNeighbor
	}
}

// Time accepts RFC 3339 timestamps, plain dates and null.
type Time struct {
	time.Time
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", DateLayout}

// DateLayout is the wire format of rental date ranges.
const DateLayout = "2006-01-02"

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Day formats the date part, or "-" when unset.
func (t Time) Day() string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// Image is a hosted image. The API sends either the URL string or an
// upload document carrying url/secure_url.
type Image struct {
	URL string
}

func (i *Image) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &i.URL)
	}
	var doc struct {
		URL       string `json:"url"`
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	i.URL = firstNonEmpty(doc.SecureURL, doc.URL)
	return nil
}

func (i Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.URL)
}

// Ref points at another record. Unpopulated references arrive as bare ids,
// populated ones as documents.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var doc struct {
		MongoID          string `json:"_id"`
		ID               string `json:"id"`
		Name             string `json:"name"`
		Title            string `json:"title"`
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		OrganizationName string `json:"organization_name"`
		BusinessName     string `json:"business_name"`
		Email            string `json:"email"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	r.ID = firstNonEmpty(doc.MongoID, doc.ID)
	r.Name = firstNonEmpty(doc.Name, doc.Title, fullName(doc.FirstName, doc.LastName), doc.OrganizationName, doc.BusinessName)
	r.Email = doc.Email
	return nil
}

// Label is the display name, falling back to the id.
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// User is the canonical profile shape for neighbors, organizations and admins.
type User struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone,omitempty"`
	Role           Role    `json:"role"`
	Avatar         string  `json:"avatar,omitempty"`
	WalletBalance  float64 `json:"wallet_balance"`
	PendingBalance float64 `json:"pending_balance"`
}

type userWire struct {
	MongoID          string  `json:"_id"`
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	OrganizationName string  `json:"organization_name"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	UserType         string  `json:"userType"`
	Role             string  `json:"role"`
	Avatar           string  `json:"avatar"`
	ProfilePicture   *Image  `json:"profile_picture"`
	Logo             *Image  `json:"logo"`
	WalletBalance    float64 `json:"wallet_balance"`
	PendingBalance   float64 `json:"pending_balance"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	var w userWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*u = User{
		ID:             firstNonEmpty(w.MongoID, w.ID),
		Name:           firstNonEmpty(w.Name, fullName(w.FirstName, w.LastName), w.OrganizationName),
		Email:          w.Email,
		Phone:          w.Phone,
		Role:           ParseRole(firstNonEmpty(w.UserType, w.Role)),
		Avatar:         firstNonEmpty(imageURL(w.ProfilePicture), imageURL(w.Logo), w.Avatar),
		WalletBalance:  w.WalletBalance,
		PendingBalance: w.PendingBalance,
	}
	return nil
}

// AuthResult is the login response.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Page is one page of a server-paginated list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

func imageURL(i *Image) string {
	if i == nil {
		return ""
	}
	return i.URL
}

func imageURLs(images []Image) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img.URL != "" {
			out = append(out, img.URL)
		}
	}
	return out
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
