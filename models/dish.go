package models

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

// Dish is a browsable catalogue entry (richer than MenuItem: category and
// tags drive the suggestion feature).
type Dish struct {
	ID          int          `gorm:"primary_key" json:"id"`
	Name        string       `gorm:"size:100;not null" json:"name" binding:"required"`
	Category    DishCategory `gorm:"type:enum('starter','main','bread','rice','dessert','drink');not null" json:"category" binding:"required"`
	Description string       `gorm:"type:text" json:"description"`
	// Tags is a comma-separated lowercase list, e.g. "spicy,veg,paneer".
	Tags      string    `gorm:"size:255" json:"tags"`
	ImageUrl  string    `json:"image_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDish struct {
	Name        string       `json:"name" binding:"required"`
	Category    DishCategory `json:"category" binding:"required"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	ImageUrl    string       `json:"image_url"`
}

func normalizeTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return strings.Join(utils.UniqueSlice(cleaned), ",")
}

func (d *Dish) TagList() []string {
	if d.Tags == "" {
		return nil
	}
	return strings.Split(d.Tags, ",")
}

func (input *NewDish) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Dish](ctx, id); err != nil {
			return err
		}
	}
	if !input.Category.IsValid() {
		return utils.NewValidationError("category", "is not a valid category")
	}
	return nil
}

func CreateDish(ctx context.Context, input *NewDish) (*Dish, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	dish := Dish{
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Tags:        normalizeTags(input.Tags),
		ImageUrl:    input.ImageUrl,
	}
	if err := db.WithContext(ctx).Create(&dish).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[Dish](); err != nil {
		return nil, err
	}
	return &dish, nil
}

func UpdateDish(ctx context.Context, id int, input *NewDish) (*Dish, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	dish, err := utils.FetchModel[Dish](ctx, id)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Model(&dish).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Category":    input.Category,
		"Description": input.Description,
		"Tags":        normalizeTags(input.Tags),
		"ImageUrl":    input.ImageUrl,
	}).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[Dish](); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Dish](id); err != nil {
		return nil, err
	}
	return dish, nil
}

func DeleteDish(ctx context.Context, id int) (*Dish, error) {
	db := config.GetDB()

	dish, err := utils.FetchModel[Dish](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(&dish).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[Dish](); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Dish](id); err != nil {
		return nil, err
	}
	return dish, nil
}

func GetDish(ctx context.Context, id int) (*Dish, error) {
	cached, err := utils.RetrieveRedis[Dish](id)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	dish, err := utils.FetchModel[Dish](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedis[Dish](dish, id); err != nil {
		return nil, err
	}
	return dish, nil
}

func ListDishes(ctx context.Context, category *DishCategory) ([]*Dish, error) {
	db := config.GetDB()

	var results []*Dish
	dbCtx := db.WithContext(ctx)
	if category != nil && category.IsValid() {
		dbCtx = dbCtx.Where("category = ?", category)
	}
	if err := dbCtx.Order("name ASC").Find(&results).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return results, nil
}

// SuggestDishes returns dishes sharing at least one tag with the input,
// most overlapping first. Ties broken by dish id for stable output.
func SuggestDishes(ctx context.Context, tags []string, limit int) ([]*Dish, error) {
	wanted := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			wanted[tag] = true
		}
	}
	if len(wanted) == 0 {
		return nil, utils.NewValidationError("tags", "must not be empty")
	}
	if limit <= 0 {
		limit = 5
	}

	dishes, err := utils.FetchAllModels[Dish](ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		dish  *Dish
		score int
	}
	var matches []scored
	for _, dish := range dishes {
		score := 0
		for _, tag := range dish.TagList() {
			if wanted[tag] {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{dish: dish, score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].dish.ID < matches[j].dish.ID
	})

	results := make([]*Dish, 0, limit)
	for _, m := range matches {
		results = append(results, m.dish)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}
