package conversation

import (
	"errors"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// Kind is the user-facing class of a failure.
type Kind int

const (
	KindRemote Kind = iota
	KindValidation
	KindNotFound
	KindBanned
	KindDecided
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBanned:
		return "banned"
	case KindDecided:
		return "decided"
	default:
		return "remote"
	}
}

func errorKind(err error) Kind {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrInvalidDeliveryType):
		return KindValidation
	case errors.Is(err, ports.ErrNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrBanned):
		return KindBanned
	case errors.Is(err, domain.ErrAlreadyDecided), errors.Is(err, domain.ErrInvalidTransition):
		return KindDecided
	default:
		return KindRemote
	}
}
