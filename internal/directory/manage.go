package directory

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// MaxImages is how many photos the API accepts per upload.
const MaxImages = 5

func validateListing(in models.ListingInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return api.Invalid("title", "Title is required")
	case strings.TrimSpace(in.Description) == "":
		return api.Invalid("description", "Description is required")
	case in.PricePerDay <= 0:
		return api.Invalid("pricePerDay", "Price per day must be greater than zero")
	case in.Deposit < 0:
		return api.Invalid("deposit", "Deposit cannot be negative")
	}
	return nil
}

func listingForm(in models.ListingInput) *api.Form {
	return api.NewForm().
		Set("title", strings.TrimSpace(in.Title)).
		Set("description", strings.TrimSpace(in.Description)).
		SetIf("category", in.Category).
		Set("pricePerDay", formatAmount(in.PricePerDay)).
		SetIf("pricePerWeek", optionalAmount(in.PricePerWeek)).
		SetIf("deposit", optionalAmount(in.Deposit)).
		SetIf("condition", in.Condition)
}

// CreateListing posts a new marketplace item with its photos.
func (c *Client) CreateListing(ctx context.Context, in models.ListingInput, images []api.File) (*models.Listing, error) {
	if err := validateListing(in); err != nil {
		return nil, err
	}
	if len(images) > MaxImages {
		return nil, api.Invalid("images", "You can upload at most 5 photos")
	}
	form := listingForm(in)
	for _, img := range images {
		img.Field = "images"
		form.Attach(img)
	}
	var l models.Listing
	if err := c.s.Upload(ctx, http.MethodPost, "/listings", form, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) UpdateListing(ctx context.Context, id string, in models.ListingInput) (*models.Listing, error) {
	if err := validateListing(in); err != nil {
		return nil, err
	}
	body := map[string]any{
		"title":        in.Title,
		"description":  in.Description,
		"category":     in.Category,
		"pricePerDay":  in.PricePerDay,
		"pricePerWeek": in.PricePerWeek,
		"deposit":      in.Deposit,
		"condition":    in.Condition,
	}
	var l models.Listing
	if err := c.s.Put(ctx, "/listings/"+url.PathEscape(id), body, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// SetListingStatus toggles an owner's listing between active and inactive.
func (c *Client) SetListingStatus(ctx context.Context, id string, status models.ListingStatus) error {
	return c.s.Patch(ctx, "/listings/"+url.PathEscape(id), map[string]string{"status": string(status)}, nil)
}

func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.s.Delete(ctx, "/listings/"+url.PathEscape(id), nil)
}

func (c *Client) MyListings(ctx context.Context, q Query) (models.Page[models.Listing], error) {
	return api.GetPage[models.Listing](ctx, c.s, "/listings/mine", q.Values())
}

// CreatePost publishes to the community feed.
func (c *Client) CreatePost(ctx context.Context, content string, images []api.File) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(images) == 0 {
		return nil, api.Invalid("content", "Write something or attach a photo")
	}
	if len(images) > MaxImages {
		return nil, api.Invalid("images", "You can upload at most 5 photos")
	}
	form := api.NewForm().SetIf("content", content)
	for _, img := range images {
		img.Field = "images"
		form.Attach(img)
	}
	var p models.Post
	if err := c.s.Upload(ctx, http.MethodPost, "/posts", form, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MyBusinessListing is the organization dashboard's own card.
func (c *Client) MyBusinessListing(ctx context.Context) (*models.BusinessListing, error) {
	var l models.BusinessListing
	if err := c.s.Get(ctx, "/business-listings/mine", nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) UpdateBusinessListing(ctx context.Context, id string, in models.BusinessListingInput, photos []api.File) (*models.BusinessListing, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, api.Invalid("business_name", "Business name is required")
	}
	if len(photos) > MaxImages {
		return nil, api.Invalid("images", "You can upload at most 5 photos")
	}
	form := api.NewForm().
		Set("business_name", strings.TrimSpace(in.Name)).
		SetIf("category", in.Category).
		SetIf("description", in.Description).
		SetIf("contact_info[phone]", in.Phone).
		SetIf("contact_info[address]", in.Address)
	for _, p := range photos {
		p.Field = "images"
		form.Attach(p)
	}
	var l models.BusinessListing
	if err := c.s.Upload(ctx, http.MethodPut, "/business-listings/"+url.PathEscape(id), form, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) Reviews(ctx context.Context, listingID string, q Query) (models.Page[models.Review], error) {
	return api.GetPage[models.Review](ctx, c.s, "/business-listings/"+url.PathEscape(listingID)+"/reviews", q.Values())
}

// CreateReview leaves a rating. One review per reviewer and listing is
// enforced by the server and surfaces as *api.ConflictError.
func (c *Client) CreateReview(ctx context.Context, listingID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, api.Invalid("rating", "Rating must be between 1 and 5")
	}
	body := map[string]any{"rating": rating, "comment": strings.TrimSpace(comment)}
	var r models.Review
	if err := c.s.Post(ctx, "/business-listings/"+url.PathEscape(listingID)+"/reviews", body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalAmount(v float64) string {
	if v <= 0 {
		return ""
	}
	return formatAmount(v)
}
