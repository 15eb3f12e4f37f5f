package bot

// Form steps stored in domain.UserState.CurrentStep.
const (
	StateLoginEmail    = "login_email"
	StateLoginPassword = "login_password"

	StateAvatar = "avatar"

	StateBrowseListings   = "browse_listings"
	StateBrowseBusinesses = "browse_businesses"
	StateBrowseOrgs       = "browse_organizations"
	StateSearchListings   = "search_listings"
	StateSearchBusinesses = "search_businesses"
	StateSearchOrgs       = "search_organizations"

	StateRentStart   = "rent_start"
	StateRentEnd     = "rent_end"
	StateRentMessage = "rent_message"

	StateRejectReason = "reject_reason"

	StateListingTitle       = "listing_title"
	StateListingDescription = "listing_description"
	StateListingCategory    = "listing_category"
	StateListingPrice       = "listing_price"
	StateListingDeposit     = "listing_deposit"
	StateListingPhotos      = "listing_photos"
	StateListingEdit        = "listing_edit"

	StateNewPost = "new_post"

	StateReviewRating  = "review_rating"
	StateReviewComment = "review_comment"

	StateBusinessEdit  = "business_edit"
	StateBusinessPhoto = "business_photo"

	StateWithdrawAmount  = "withdraw_amount"
	StateWithdrawBank    = "withdraw_bank"
	StateWithdrawAccount = "withdraw_account"
	StateWithdrawConfirm = "withdraw_confirm"
)

// Keys of domain.UserState.TempData.
const (
	keyEmail       = "email"
	keyListingID   = "listing_id"
	keyListingName = "listing_title"
	keyRequestID   = "request_id"
	keyMessageID   = "message_id"
	keyStartDate   = "start_date"
	keyEndDate     = "end_date"
	keySearch      = "search"
	keyTitle       = "title"
	keyDescription = "description"
	keyCategory    = "category"
	keyPrice       = "price"
	keyDeposit     = "deposit"
	keyPhotos      = "photos"
	keyRating      = "rating"
	keyField       = "field"
	keyAmount      = "amount"
	keyBankCode    = "bank_code"
	keyBankName    = "bank_name"
	keyAccountNo   = "account_number"
	keyAccountName = "account_name"
)
