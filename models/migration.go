package models

import (
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Customer{}, &User{},
		&MenuItem{}, &Dish{}, &HeroOffer{},
		&Review{}, &ReviewLike{},
		&Order{}, &OrderItem{},
		&DailyAggregate{}, &DailyAggregateProduct{},
		&MailMessageRecord{},
		&IdempotencyKey{},
	)
	utils.ErrorPanic(err)
}
