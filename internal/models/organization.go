package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Organization is a business profile.
type Organization struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Address     string   `json:"address,omitempty"`
	Logo        string   `json:"logo,omitempty"`
	Images      []string `json:"images"`
	Rating      float64  `json:"rating"`
}

func (o *Organization) UnmarshalJSON(b []byte) error {
	var w struct {
		MongoID          string  `json:"_id"`
		ID               string  `json:"id"`
		Name             string  `json:"name"`
		OrganizationName string  `json:"organization_name"`
		Category         string  `json:"category"`
		Description      string  `json:"description"`
		Email            string  `json:"email"`
		Phone            string  `json:"phone"`
		Address          string  `json:"address"`
		Logo             *Image  `json:"logo"`
		ProfilePicture   *Image  `json:"profile_picture"`
		Images           []Image `json:"images"`
		Rating           float64 `json:"rating"`
		AverageRating    float64 `json:"averageRating"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	rating := w.AverageRating
	if rating == 0 {
		rating = w.Rating
	}
	*o = Organization{
		ID:          firstNonEmpty(w.MongoID, w.ID),
		Name:        firstNonEmpty(w.OrganizationName, w.Name),
		Category:    w.Category,
		Description: w.Description,
		Email:       w.Email,
		Phone:       w.Phone,
		Address:     w.Address,
		Logo:        firstNonEmpty(imageURL(w.Logo), imageURL(w.ProfilePicture)),
		Images:      imageURLs(w.Images),
		Rating:      rating,
	}
	return nil
}

// BusinessListing is an organization's public card in the discovery feed.
type BusinessListing struct {
	ID             string   `json:"id"`
	Organization   Ref      `json:"organization"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Description    string   `json:"description,omitempty"`
	Images         []string `json:"images"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Address        string   `json:"address,omitempty"`
	Website        string   `json:"website,omitempty"`
	OperatingHours []string `json:"operating_hours,omitempty"`
	AverageRating  float64  `json:"average_rating"`
	TotalReviews   int      `json:"total_reviews"`
}

func (l *BusinessListing) UnmarshalJSON(b []byte) error {
	var w struct {
		MongoID       string  `json:"_id"`
		ID            string  `json:"id"`
		Organization  Ref     `json:"organization"`
		Owner         Ref     `json:"owner"`
		Name          string  `json:"name"`
		BusinessName  string  `json:"business_name"`
		Title         string  `json:"title"`
		Category      string  `json:"category"`
		Description   string  `json:"description"`
		Images        []Image `json:"images"`
		Photos        []Image `json:"photos"`
		ContactInfo   struct {
			Email   string `json:"email"`
			Phone   string `json:"phone"`
			Address string `json:"address"`
			Website string `json:"website"`
		} `json:"contact_info"`
		OperatingHours json.RawMessage `json:"operating_hours"`
		AverageRating  float64         `json:"averageRating"`
		TotalReviews   int             `json:"totalReviews"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	org := w.Organization
	if org.ID == "" {
		org = w.Owner
	}
	hours, err := parseHours(w.OperatingHours)
	if err != nil {
		return fmt.Errorf("operating_hours: %w", err)
	}
	*l = BusinessListing{
		ID:             firstNonEmpty(w.MongoID, w.ID),
		Organization:   org,
		Name:           firstNonEmpty(w.BusinessName, w.Name, w.Title),
		Category:       w.Category,
		Description:    w.Description,
		Images:         append(imageURLs(w.Images), imageURLs(w.Photos)...),
		Email:          w.ContactInfo.Email,
		Phone:          w.ContactInfo.Phone,
		Address:        w.ContactInfo.Address,
		Website:        w.ContactInfo.Website,
		OperatingHours: hours,
		AverageRating:  w.AverageRating,
		TotalReviews:   w.TotalReviews,
	}
	return nil
}

// parseHours flattens the three operating-hours shapes the API has used:
// a free-text string, a day->hours object and a list of {day, open, close}.
func parseHours(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	case '{':
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(m))
		for day, hours := range m {
			out = append(out, fmt.Sprintf("%s: %s", day, hours))
		}
		sort.Strings(out)
		return out, nil
	case '[':
		var days []struct {
			Day    string `json:"day"`
			Open   string `json:"open"`
			Close  string `json:"close"`
			Closed bool   `json:"closed"`
		}
		if err := json.Unmarshal(raw, &days); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(days))
		for _, d := range days {
			if d.Closed {
				out = append(out, d.Day+": closed")
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s-%s", d.Day, d.Open, d.Close))
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected shape %s", strings.TrimSpace(string(raw[:1])))
}

// BusinessListingInput is the organization's edit form.
type BusinessListingInput struct {
	Name        string
	Category    string
	Description string
	Phone       string
	Address     string
}

// Review is a 1..5 rating left by a neighbor on a business listing.
type Review struct {
	ID        string `json:"id"`
	Listing   string `json:"listing"`
	Reviewer  Ref    `json:"reviewer"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt Time   `json:"created_at"`
}

func (r *Review) UnmarshalJSON(b []byte) error {
	var w struct {
		MongoID         string `json:"_id"`
		ID              string `json:"id"`
		BusinessListing Ref    `json:"businessListing"`
		Listing         Ref    `json:"listing"`
		Reviewer        Ref    `json:"reviewer"`
		User            Ref    `json:"user"`
		Rating          int    `json:"rating"`
		Comment         string `json:"comment"`
		CreatedAt       Time   `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	reviewer := w.Reviewer
	if reviewer.ID == "" {
		reviewer = w.User
	}
	*r = Review{
		ID:        firstNonEmpty(w.MongoID, w.ID),
		Listing:   firstNonEmpty(w.BusinessListing.ID, w.Listing.ID),
		Reviewer:  reviewer,
		Rating:    w.Rating,
		Comment:   w.Comment,
		CreatedAt: w.CreatedAt,
	}
	return nil
}

// Stars renders a rating as a five-star bar.
func Stars(rating float64) string {
	full := int(rating + 0.5)
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}
