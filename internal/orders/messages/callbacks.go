package messages

import (
	"strconv"
	"strings"
)

// Callback data sent back by inline choices.
const (
	CallbackMyOrders       = "my_orders"
	CallbackHelp           = "help"
	CallbackBackToMenu     = "back_to_menu"
	CallbackAddMoreYes     = "add_more_yes"
	CallbackAddMoreNo      = "add_more_no"
	CallbackNameCorrect    = "name_correct"
	CallbackNameWrong      = "name_wrong"
	CallbackPhoneCorrect   = "phone_correct"
	CallbackPhoneWrong     = "phone_wrong"
	CallbackAddressCorrect = "address_correct"
	CallbackAddressWrong   = "address_wrong"
	CallbackFinalYes       = "final_confirm_yes"
	CallbackFinalNo        = "final_confirm_no"
	CallbackEditName       = "edit_name"
	CallbackEditPhone      = "edit_phone"
	CallbackEditAddress    = "edit_address"
	CallbackEditProducts   = "edit_products"
	CallbackEditDelivery   = "edit_delivery"
	CallbackBackToConfirm  = "back_to_confirm"
	CallbackCartAdd        = "cart_add"
	CallbackCartDone       = "cart_done"

	PrefixOrder      = "order_"
	PrefixProduct    = "product_"
	PrefixBrowse     = "browse_products_"
	PrefixDelivery   = "delivery_"
	PrefixCartRemove = "cart_remove_"
	PrefixApprove    = "approve_"
	PrefixReject     = "reject_"
)

func OrderCallback(productID string) string { return PrefixOrder + productID }
func ProductCallback(productID string) string { return PrefixProduct + productID }
func BrowseCallback(page int) string { return PrefixBrowse + strconv.Itoa(page) }
func CartRemoveCallback(index int) string { return PrefixCartRemove + strconv.Itoa(index) }
func ApproveCallback(orderID string) string { return PrefixApprove + orderID }
func RejectCallback(orderID string) string { return PrefixReject + orderID }

// TrimPrefix returns the remainder of data after prefix and whether prefix matched
// with a non-empty remainder.
func TrimPrefix(data, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(data, prefix)
	return rest, ok && rest != ""
}

// TrimIndex parses the integer following prefix.
func TrimIndex(data, prefix string) (int, bool) {
	rest, ok := TrimPrefix(data, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
