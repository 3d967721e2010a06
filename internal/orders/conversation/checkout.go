package conversation

import (
	"context"
	"strconv"
	"strings"

	"github.com/dejobratic/orderbot/internal/orders/app/commands"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/messages"
)

// beginOrder is the checkout entry point. A pending quantity prompt is
// replaced; any later step must be finished or cancelled first.
func (e *Engine) beginOrder(ctx context.Context, ev Event, productID string) {
	if err := e.checkBan(ctx, ev.CustomerID); err != nil {
		e.say(ctx, ev.ChatID, messages.Banned)
		return
	}

	existing, ok := e.sessions.Get(ev.CustomerID)
	if ok && existing.Step != StepBrowsing && existing.Step != StepQuantity {
		e.hint(ctx, existing)
		return
	}

	product, err := e.activeProduct(ctx, productID)
	if err != nil {
		if ok {
			existing.Step = StepBrowsing
			existing.Product = nil
		}
		if errorKind(err) == KindNotFound {
			e.say(ctx, ev.ChatID, messages.ProductNotFound)
			return
		}
		e.fail(ctx, ev.ChatID, "order entry product lookup", err)
		return
	}
	if product.Stock < 1 {
		e.say(ctx, ev.ChatID, messages.OutOfStock(*product))
		return
	}

	s := e.sessions.Start(ev.CustomerID, ev.ChatID)
	s.Product = product
	s.Step = StepQuantity
	e.say(ctx, s.ChatID, messages.AskQuantity(*product))
}

func (e *Engine) sessionText(ctx context.Context, s *Session, ev Event) {
	text := strings.TrimSpace(ev.Text)

	switch s.Step {
	case StepQuantity:
		e.takeQuantity(ctx, s, text)
	case StepNameConfirm, StepNameEdit:
		if text == "" {
			e.say(ctx, s.ChatID, messages.AskNonEmpty)
			return
		}
		s.Profile.Name = text
		s.Step = StepNameConfirm
		prompt, keyboard := messages.ConfirmName(text)
		e.ask(ctx, s.ChatID, prompt, keyboard)
	case StepPhoneConfirm, StepPhoneEdit:
		if text == "" {
			e.say(ctx, s.ChatID, messages.AskNonEmpty)
			return
		}
		s.Profile.Phone = text
		s.Step = StepPhoneConfirm
		prompt, keyboard := messages.ConfirmPhone(text)
		e.ask(ctx, s.ChatID, prompt, keyboard)
	case StepHouseNo, StepStreet, StepWard, StepTownship, StepCity:
		if text == "" {
			e.say(ctx, s.ChatID, messages.AskNonEmpty)
			return
		}
		*s.addressField(s.Step) = text
		e.advanceAddress(ctx, s)
	default:
		e.hint(ctx, s)
	}
}

func (e *Engine) takeQuantity(ctx context.Context, s *Session, text string) {
	if s.Product == nil {
		s.Step = StepBrowsing
		e.fail(ctx, s.ChatID, "quantity", errNoPendingProduct)
		return
	}

	quantity, err := strconv.Atoi(text)
	if err != nil {
		e.say(ctx, s.ChatID, messages.AskValidNumber)
		return
	}

	item, err := domain.NewCartItem(*s.Product, quantity)
	if err != nil {
		e.say(ctx, s.ChatID, messages.InvalidQuantity(s.Product.Stock))
		return
	}

	s.Cart = append(s.Cart, item)
	s.Product = nil
	s.Step = StepAddMore
	prompt, keyboard := messages.ItemAdded(item, domain.CartTotal(s.Cart))
	e.ask(ctx, s.ChatID, prompt, keyboard)
}

var addressPrompts = map[Step]string{
	StepStreet:   messages.AskStreet,
	StepWard:     messages.AskWard,
	StepTownship: messages.AskTownship,
	StepCity:     messages.AskCity,
}

func (e *Engine) advanceAddress(ctx context.Context, s *Session) {
	if s.Step == StepCity {
		s.Step = StepAddressConfirm
		prompt, keyboard := messages.ConfirmAddress(s.Profile.Address)
		e.ask(ctx, s.ChatID, prompt, keyboard)
		return
	}
	s.Step++
	e.say(ctx, s.ChatID, addressPrompts[s.Step])
}

func (e *Engine) sessionChoice(ctx context.Context, s *Session, ev Event) {
	data := ev.Data

	switch {
	case s.Step == StepAddMore && data == messages.CallbackAddMoreYes:
		s.Step = StepBrowsing
		e.showCatalog(ctx, s.ChatID, 0)
	case s.Step == StepAddMore && data == messages.CallbackAddMoreNo:
		if s.Reviewing {
			e.toSummary(ctx, s)
			return
		}
		s.Step = StepNameConfirm
		e.say(ctx, s.ChatID, messages.AskName)

	case s.Step == StepNameConfirm && data == messages.CallbackNameCorrect:
		if strings.TrimSpace(s.Profile.Name) == "" {
			e.say(ctx, s.ChatID, messages.AskName)
			return
		}
		if s.Reviewing {
			e.toSummary(ctx, s)
			return
		}
		s.Step = StepPhoneConfirm
		e.say(ctx, s.ChatID, messages.AskPhone)
	case s.Step == StepNameConfirm && data == messages.CallbackNameWrong:
		s.Step = StepNameEdit
		e.say(ctx, s.ChatID, messages.AskNameAgain)

	case s.Step == StepPhoneConfirm && data == messages.CallbackPhoneCorrect:
		if strings.TrimSpace(s.Profile.Phone) == "" {
			e.say(ctx, s.ChatID, messages.AskPhone)
			return
		}
		if s.Reviewing {
			e.toSummary(ctx, s)
			return
		}
		s.Step = StepHouseNo
		e.say(ctx, s.ChatID, messages.AskHouseNo)
	case s.Step == StepPhoneConfirm && data == messages.CallbackPhoneWrong:
		s.Step = StepPhoneEdit
		e.say(ctx, s.ChatID, messages.AskPhoneAgain)

	case s.Step == StepAddressConfirm && data == messages.CallbackAddressCorrect:
		if s.Reviewing {
			e.toSummary(ctx, s)
			return
		}
		s.Step = StepDeliveryType
		e.ask(ctx, s.ChatID, messages.AskDelivery, messages.DeliveryMenu())
	case s.Step == StepAddressConfirm && data == messages.CallbackAddressWrong:
		s.Profile.Address = domain.Address{}
		s.Step = StepHouseNo
		e.say(ctx, s.ChatID, messages.AskHouseNoAgain)

	case s.Step == StepDeliveryType && strings.HasPrefix(data, messages.PrefixDelivery):
		delivery, err := domain.ParseDeliveryType(strings.TrimPrefix(data, messages.PrefixDelivery))
		if err != nil {
			e.ask(ctx, s.ChatID, messages.AskDelivery, messages.DeliveryMenu())
			return
		}
		s.Delivery = delivery
		e.toSummary(ctx, s)

	case s.Step == StepFinalConfirm:
		e.finalChoice(ctx, s, data)
	case s.Step == StepCartEdit:
		e.cartChoice(ctx, s, data)

	default:
		e.hint(ctx, s)
	}
}

func (e *Engine) finalChoice(ctx context.Context, s *Session, data string) {
	switch data {
	case messages.CallbackFinalYes:
		s.Step = StepPaymentPhoto
		e.say(ctx, s.ChatID, messages.PaymentInstructions(e.cfg.PaymentDetails, domain.CartTotal(s.Cart)))
	case messages.CallbackFinalNo:
		prompt, keyboard := messages.EditMenu()
		e.ask(ctx, s.ChatID, prompt, keyboard)
	case messages.CallbackEditName:
		s.Step = StepNameEdit
		e.say(ctx, s.ChatID, messages.AskNameAgain)
	case messages.CallbackEditPhone:
		s.Step = StepPhoneEdit
		e.say(ctx, s.ChatID, messages.AskPhoneAgain)
	case messages.CallbackEditAddress:
		s.Profile.Address = domain.Address{}
		s.Step = StepHouseNo
		e.say(ctx, s.ChatID, messages.AskHouseNo)
	case messages.CallbackEditDelivery:
		s.Step = StepDeliveryType
		e.ask(ctx, s.ChatID, messages.AskDelivery, messages.DeliveryMenu())
	case messages.CallbackEditProducts:
		s.Step = StepCartEdit
		prompt, keyboard := messages.CartEditor(s.Cart)
		e.ask(ctx, s.ChatID, prompt, keyboard)
	case messages.CallbackBackToConfirm:
		e.toSummary(ctx, s)
	default:
		e.hint(ctx, s)
	}
}

func (e *Engine) cartChoice(ctx context.Context, s *Session, data string) {
	if index, ok := messages.TrimIndex(data, messages.PrefixCartRemove); ok {
		if index >= len(s.Cart) {
			prompt, keyboard := messages.CartEditor(s.Cart)
			e.ask(ctx, s.ChatID, prompt, keyboard)
			return
		}
		s.Cart = append(s.Cart[:index:index], s.Cart[index+1:]...)
		if len(s.Cart) == 0 {
			s.Step = StepBrowsing
			e.say(ctx, s.ChatID, messages.CartEmptied)
			e.showCatalog(ctx, s.ChatID, 0)
			return
		}
		prompt, keyboard := messages.CartEditor(s.Cart)
		e.ask(ctx, s.ChatID, prompt, keyboard)
		return
	}

	switch data {
	case messages.CallbackCartAdd:
		s.Step = StepBrowsing
		e.showCatalog(ctx, s.ChatID, 0)
	case messages.CallbackCartDone:
		e.toSummary(ctx, s)
	default:
		e.hint(ctx, s)
	}
}

func (e *Engine) toSummary(ctx context.Context, s *Session) {
	s.Step = StepFinalConfirm
	s.Reviewing = true
	prompt, keyboard := messages.OrderSummary(s.Profile, s.Cart, s.Delivery)
	e.ask(ctx, s.ChatID, prompt, keyboard)
}

// hint repeats the pending prompt for free-text steps and points at the
// buttons otherwise. The session is left as is.
func (e *Engine) hint(ctx context.Context, s *Session) {
	switch s.Step {
	case StepQuantity:
		if s.Product != nil {
			e.say(ctx, s.ChatID, messages.AskQuantity(*s.Product))
			return
		}
	case StepNameEdit:
		e.say(ctx, s.ChatID, messages.AskNameAgain)
		return
	case StepPhoneEdit:
		e.say(ctx, s.ChatID, messages.AskPhoneAgain)
		return
	case StepHouseNo:
		e.say(ctx, s.ChatID, messages.AskHouseNo)
		return
	case StepStreet, StepWard, StepTownship, StepCity:
		e.say(ctx, s.ChatID, addressPrompts[s.Step])
		return
	case StepPaymentPhoto:
		e.say(ctx, s.ChatID, messages.AskPaymentPhoto)
		return
	}
	e.say(ctx, s.ChatID, messages.UseButtons)
}

// finalize submits the order. The session ends whatever the outcome.
func (e *Engine) finalize(ctx context.Context, s *Session, ev Event) {
	cmd := commands.PlaceOrderCommand{
		CustomerID:      s.CustomerID,
		ChatID:          s.ChatID,
		Username:        ev.Username,
		Profile:         s.Profile,
		Items:           s.Cart,
		Delivery:        s.Delivery,
		PaymentPhotoRef: ev.PhotoRef,
	}
	e.sessions.Clear(s.CustomerID)

	if _, err := e.orders.PlaceOrder(ctx, cmd); err != nil {
		e.logger.ErrorContext(ctx, "order finalize failed",
			"customer_id", s.CustomerID,
			"kind", errorKind(err).String(),
			"error", err,
		)
		e.say(ctx, s.ChatID, messages.OrderFailed(err))
	}
}
