package domain

import (
	"fmt"
	"strings"
)

// DeliveryType is how the order leaves the shop.
type DeliveryType string

const (
	DeliveryExpressCars     DeliveryType = "express_cars"
	DeliveryDeliveryCompany DeliveryType = "delivery_company"
)

// DeliveryTypes lists the supported types in menu order.
var DeliveryTypes = []DeliveryType{DeliveryExpressCars, DeliveryDeliveryCompany}

// ParseDeliveryType accepts only the supported values.
func ParseDeliveryType(value string) (DeliveryType, error) {
	for _, t := range DeliveryTypes {
		if string(t) == value {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryType, value)
}

// Label renders the type for people, e.g. "Express Cars".
func (t DeliveryType) Label() string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
