package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxTierPrice giới hạn giá một kỳ
const MaxTierPrice = 100_000

type SetTierRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func (r SetTierRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 50)),
		// price = 0 tắt subscription
		validation.Field(&r.Price, validation.Min(int64(0)), validation.Max(int64(MaxTierPrice))),
	)
}

type ListResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}

type RenewResult struct {
	Renewed int `json:"renewed"`
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}
