package conversation

// Step is the prompt a session is waiting on.
type Step int

const (
	// StepBrowsing is idle: the cart may hold items but nothing is being asked.
	StepBrowsing Step = iota
	StepQuantity
	StepAddMore
	StepNameConfirm
	StepNameEdit
	StepPhoneConfirm
	StepPhoneEdit
	StepHouseNo
	StepStreet
	StepWard
	StepTownship
	StepCity
	StepAddressConfirm
	StepDeliveryType
	StepFinalConfirm
	StepCartEdit
	StepPaymentPhoto
)

var stepNames = [...]string{
	StepBrowsing:       "browsing",
	StepQuantity:       "quantity",
	StepAddMore:        "add_more",
	StepNameConfirm:    "name_confirm",
	StepNameEdit:       "name_edit",
	StepPhoneConfirm:   "phone_confirm",
	StepPhoneEdit:      "phone_edit",
	StepHouseNo:        "house_no",
	StepStreet:         "street",
	StepWard:           "ward",
	StepTownship:       "township",
	StepCity:           "city",
	StepAddressConfirm: "address_confirm",
	StepDeliveryType:   "delivery_type",
	StepFinalConfirm:   "final_confirm",
	StepCartEdit:       "cart_edit",
	StepPaymentPhoto:   "payment_photo",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}
