package models

// ItemSize is the portion size of an ordered menu item.
type ItemSize string

const (
	ItemSizeHalf ItemSize = "half"
	ItemSizeFull ItemSize = "full"
)

var AllItemSize = []ItemSize{
	ItemSizeHalf,
	ItemSizeFull,
}

func (e ItemSize) IsValid() bool {
	switch e {
	case ItemSizeHalf, ItemSizeFull:
		return true
	}
	return false
}

func (e ItemSize) String() string {
	return string(e)
}

// ReviewStatus gates which reviews are shown publicly.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
)

func (e ReviewStatus) IsValid() bool {
	switch e {
	case ReviewStatusPending, ReviewStatusApproved:
		return true
	}
	return false
}

func (e ReviewStatus) String() string {
	return string(e)
}

// DishCategory groups dishes for browsing and suggestions.
type DishCategory string

const (
	DishCategoryStarter DishCategory = "starter"
	DishCategoryMain    DishCategory = "main"
	DishCategoryBread   DishCategory = "bread"
	DishCategoryRice    DishCategory = "rice"
	DishCategoryDessert DishCategory = "dessert"
	DishCategoryDrink   DishCategory = "drink"
)

var AllDishCategory = []DishCategory{
	DishCategoryStarter,
	DishCategoryMain,
	DishCategoryBread,
	DishCategoryRice,
	DishCategoryDessert,
	DishCategoryDrink,
}

func (e DishCategory) IsValid() bool {
	for _, c := range AllDishCategory {
		if e == c {
			return true
		}
	}
	return false
}

func (e DishCategory) String() string {
	return string(e)
}

// UserRole for staff accounts.
type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleStaff UserRole = "Staff"
)

func (e UserRole) IsValid() bool {
	switch e {
	case UserRoleAdmin, UserRoleStaff:
		return true
	}
	return false
}

func (e UserRole) String() string {
	return string(e)
}

// MailKind identifies what a queued mail record carries.
type MailKind string

const (
	MailKindInvoice MailKind = "IV"
	MailKindOffer   MailKind = "OF"
	MailKindOtp     MailKind = "OT"
)

func (e MailKind) IsValid() bool {
	switch e {
	case MailKindInvoice, MailKindOffer, MailKindOtp:
		return true
	}
	return false
}

func (e MailKind) String() string {
	return string(e)
}
